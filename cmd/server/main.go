// Command server starts the Miru audit API: REST endpoints for jobs,
// reports and history, a WebSocket stream for live job events, and the
// Swagger UI at /swagger/index.html.
//
// Usage: go run ./cmd/server [flags]
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raysh454/miru/internal/app"
	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/server"
	"github.com/raysh454/miru/internal/snapshot"
)

func main() {
	listen := flag.String("listen", ":8080", "address to serve the API on")
	storage := flag.String("storage", "", "workspace directory for run history (empty keeps history in memory)")
	source := flag.String("source", "", "snapshot source override (chromedp or static)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger := logging.NewStdoutLogger("Main")
	if *verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	snapshot.RegisterDefaultSources()

	appCfg := app.DefaultConfig()
	if *storage != "" {
		appCfg.Tracker.StoragePath = *storage
	}
	if *source != "" {
		appCfg.Snapshot.Source = snapshot.Kind(*source)
	}

	s, err := server.NewServer(server.Config{
		ListenAddr: *listen,
		AppConfig:  appCfg,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("Failed to build server", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()

	logger.Info("Serving audit API", logging.Field{Key: "addr", Value: *listen})

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Shutdown did not finish cleanly", logging.Field{Key: "error", Value: err.Error()})
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", logging.Field{Key: "error", Value: err.Error()})
			os.Exit(1)
		}
	}
}
