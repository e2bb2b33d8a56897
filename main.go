// Command miru audits web pages for accessibility defects.
//
// One-shot usage:
//
//	miru -url https://example.org -format text
//	miru -crawl -max-depth 2 -format json https://example.org
//
// Logs go to stderr; the rendered report goes to stdout or -out.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raysh454/miru/internal/app"
	"github.com/raysh454/miru/internal/cli"
	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/snapshot"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Print(cli.Usage())
			return
		}
		fmt.Fprintf(os.Stderr, "miru: %v\n\n%s", err, cli.Usage())
		os.Exit(2)
	}

	// Stdout carries the report, so logs go to stderr.
	logger := logging.NewStdoutLogger("miru").SetOutput(os.Stderr)
	if args.Verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	snapshot.RegisterDefaultSources()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.NewApplication(app.DefaultConfig(), args, logger)
	if err := application.Run(ctx); err != nil {
		logger.Error("Audit failed", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}
