// Package cli parses the command-line arguments of the audit binary.
// Parsing is deterministic and never reads os.Args directly, so tests can
// pass arbitrary slices.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Args are the parsed options of one audit run.
type Args struct {
	// URL is the page to audit, or the crawl seed with -crawl.
	URL string

	// Source selects the snapshot backend; empty uses the config default.
	Source string

	// Format is the report rendering: json, text or html.
	Format string

	// Out is a file path for the rendered report; empty writes to stdout.
	Out string

	// Crawl audits every same-origin page reachable from URL.
	Crawl bool

	// MaxDepth and MaxPages bound the crawl; zero uses the config default.
	MaxDepth int
	MaxPages int

	// Concurrency is how many pages are audited in parallel during crawls;
	// zero uses the config default.
	Concurrency int

	// Track records the run in the workspace history under Storage.
	Track   bool
	Storage string

	// Verbose enables debug logging.
	Verbose bool

	// RawArgs is the original args slice, kept for debugging.
	RawArgs []string
}

func newFlagSet(dst *Args) *flag.FlagSet {
	fs := flag.NewFlagSet("miru", flag.ContinueOnError)
	fs.StringVar(&dst.URL, "url", "", "page to audit, or crawl seed; may also be the first positional argument")
	fs.StringVar(&dst.Source, "source", "", "snapshot source: chromedp or static (default chromedp)")
	fs.StringVar(&dst.Format, "format", "text", "report format: json, text or html")
	fs.StringVar(&dst.Out, "out", "", "write the report to this file instead of stdout")
	fs.BoolVar(&dst.Crawl, "crawl", false, "audit every same-origin page reachable from the url")
	fs.IntVar(&dst.MaxDepth, "max-depth", 0, "crawl link depth (0 = default)")
	fs.IntVar(&dst.MaxPages, "max-pages", 0, "crawl page cap (0 = default)")
	fs.IntVar(&dst.Concurrency, "concurrency", 0, "pages audited in parallel during crawls (0 = default)")
	fs.BoolVar(&dst.Track, "track", false, "record this run in the workspace history")
	fs.StringVar(&dst.Storage, "storage", ".", "workspace directory for -track history")
	fs.BoolVar(&dst.Verbose, "verbose", false, "debug logging")
	return fs
}

// ParseArgs parses a slice of args and returns Args. Flag errors, including
// flag.ErrHelp, come back to the caller instead of being printed.
func ParseArgs(args []string) (*Args, error) {
	out := &Args{RawArgs: args}
	fs := newFlagSet(out)
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if out.URL == "" && fs.NArg() > 0 {
		out.URL = fs.Arg(0)
	}
	if strings.TrimSpace(out.URL) == "" {
		return nil, fmt.Errorf("missing target url (pass -url or a positional argument)")
	}

	return out, nil
}

// Usage returns the help text for the binary.
func Usage() string {
	var b strings.Builder
	b.WriteString("Usage: miru [flags] <url>\n\nAudit a web page for accessibility defects.\n\nFlags:\n")
	fs := newFlagSet(&Args{})
	fs.SetOutput(&b)
	fs.PrintDefaults()
	return b.String()
}
