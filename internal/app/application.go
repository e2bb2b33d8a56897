package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raysh454/miru/internal/cli"
	"github.com/raysh454/miru/internal/enumerator"
	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/render"
	"github.com/raysh454/miru/internal/report"
	"github.com/raysh454/miru/internal/runner"
	"github.com/raysh454/miru/internal/snapshot"
	"github.com/raysh454/miru/internal/tracker"
)

// Application runs one audit from parsed command-line arguments: capture the
// page (or crawl the site), audit, render, and optionally record history.
type Application struct {
	Config *Config
	Args   *cli.Args
	Logger logging.Logger

	// Out receives the rendered report when Args.Out is empty. The CLI
	// wires os.Stdout.
	Out io.Writer
}

// NewApplication builds the runtime for one CLI invocation. Argument
// overrides are folded into a copy of cfg; cfg itself is left alone.
func NewApplication(cfg *Config, args *cli.Args, logger logging.Logger) *Application {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if args == nil {
		args = &cli.Args{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	eff := *cfg
	if args.Source != "" {
		eff.Snapshot.Source = snapshot.Kind(args.Source)
	}
	if args.MaxDepth > 0 {
		eff.Enumerator.MaxDepth = args.MaxDepth
	}
	if args.MaxPages > 0 {
		eff.Enumerator.MaxPages = args.MaxPages
	}
	if args.Concurrency > 0 {
		eff.Runner.MaxConcurrency = args.Concurrency
	}
	if args.Track && args.Storage != "" {
		eff.Tracker.StoragePath = args.Storage
	}

	return &Application{
		Config: &eff,
		Args:   args,
		Logger: logger.With(logging.Field{Key: "component", Value: "application"}),
		Out:    os.Stdout,
	}
}

// Run performs the audit and writes the rendered report. Pages that fail to
// audit during a crawl are skipped with an error log; Run reports them in
// its return value once the rest has been written.
func (a *Application) Run(ctx context.Context) error {
	format, err := render.ParseFormat(a.Args.Format)
	if err != nil {
		return err
	}
	if a.Args.Crawl && format == render.FormatHTML {
		return errors.New("html output renders a single page; use json or text with -crawl")
	}

	comps, err := NewComponents(a.Config, a.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := comps.Close(); err != nil {
			a.Logger.Warn("Failed to close components",
				logging.Field{Key: "error", Value: err.Error()})
		}
	}()

	pages := []string{a.Args.URL}
	if a.Args.Crawl {
		spider := enumerator.NewSpider(&a.Config.Enumerator, comps.WebClient, a.Logger)
		pages, err = spider.Enumerate(ctx, a.Args.URL)
		if err != nil {
			return fmt.Errorf("enumerate %s: %w", a.Args.URL, err)
		}
	}

	var tr tracker.Tracker
	if a.Args.Track {
		tr = comps.Tracker
	}

	pool := runner.New(&a.Config.Runner, comps.Source, comps.Auditor, tr, a.Logger)
	results, err := pool.Run(ctx, pages, nil)
	if err != nil {
		return err
	}

	reports := make([]*report.Report, 0, len(results))
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			a.Logger.Error("Page audit failed",
				logging.Field{Key: "url", Value: res.URL},
				logging.Field{Key: "error", Value: res.Err.Error()})
			continue
		}
		reports = append(reports, res.Report)
	}
	if len(reports) == 0 {
		return fmt.Errorf("no page could be audited (%d failed)", failed)
	}

	out, err := renderReports(reports, format)
	if err != nil {
		return err
	}
	if err := a.write(out); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pages failed to audit", failed, len(results))
	}
	return nil
}

// renderReports renders one report in the requested format, or a crawl's
// reports as a JSON array or concatenated text sections.
func renderReports(reports []*report.Report, f render.Format) ([]byte, error) {
	if len(reports) == 1 {
		return render.Render(reports[0], f)
	}
	switch f {
	case render.FormatJSON:
		return json.MarshalIndent(reports, "", "  ")
	case render.FormatText:
		var b strings.Builder
		for i, rep := range reports {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(render.Text(rep))
		}
		return []byte(b.String()), nil
	}
	return nil, fmt.Errorf("format %q renders a single page", f)
}

func (a *Application) write(data []byte) error {
	if a.Args.Out != "" {
		if err := os.WriteFile(a.Args.Out, data, 0644); err != nil {
			return fmt.Errorf("write report to %s: %w", a.Args.Out, err)
		}
		a.Logger.Info("Report written",
			logging.Field{Key: "path", Value: a.Args.Out},
			logging.Field{Key: "bytes", Value: len(data)})
		return nil
	}

	w := a.Out
	if w == nil {
		w = os.Stdout
	}
	_, err := w.Write(data)
	return err
}
