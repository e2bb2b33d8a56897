package tracker_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/miru/internal/report"
	"github.com/raysh454/miru/internal/tracker"
)

// trackerFactory builds one tracker implementation for the shared
// conformance tests below.
type trackerFactory struct {
	name string
	make func(t *testing.T, cfg *tracker.Config) tracker.Tracker
}

func trackerFactories() []trackerFactory {
	return []trackerFactory{
		{
			name: "sqlite",
			make: func(t *testing.T, cfg *tracker.Config) tracker.Tracker {
				t.Helper()
				if cfg == nil {
					cfg = &tracker.Config{}
				}
				cfg.StoragePath = t.TempDir()
				tr, err := tracker.NewSQLiteTracker(cfg, nil)
				if err != nil {
					t.Fatalf("NewSQLiteTracker() error = %v", err)
				}
				t.Cleanup(func() { tr.Close() })
				return tr
			},
		},
		{
			name: "memory",
			make: func(t *testing.T, cfg *tracker.Config) tracker.Tracker {
				t.Helper()
				tr := tracker.NewMemoryTracker(cfg, nil)
				t.Cleanup(func() { tr.Close() })
				return tr
			},
		},
	}
}

func finding(sev report.Severity, cat report.Category, msg, selector string) report.Finding {
	f := report.Finding{
		Severity: sev,
		Category: cat,
		Message:  msg,
	}
	if selector != "" {
		f.Selector = selector
		f.ElementSnippet = "<" + strings.TrimPrefix(selector, "#") + ">"
	}
	return f
}

func pageReport(url string, at time.Time, findings ...report.Finding) *report.Report {
	rep := report.New(url, findings)
	if !at.IsZero() {
		rep.GeneratedAt = at
	}
	return rep
}

func TestTracker_CommitStoresRun(t *testing.T) {
	t.Parallel()

	for _, f := range trackerFactories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			tr := f.make(t, nil)

			rep := pageReport("https://Example.com/Pricing/", time.Time{},
				finding(report.SeverityError, report.CategoryImages, "Image has no alt attribute", "#hero"))

			run, err := tr.Commit(context.Background(), rep)
			if err != nil {
				t.Fatalf("Commit() error = %v", err)
			}

			if run.ID == "" {
				t.Error("Commit() returned a run without an ID")
			}
			if run.URL != "https://example.com/Pricing" {
				t.Errorf("run.URL = %q, want canonical %q", run.URL, "https://example.com/Pricing")
			}
			if run.SourceURL != "https://Example.com/Pricing/" {
				t.Errorf("run.SourceURL = %q, want the URL as reported", run.SourceURL)
			}
			if !run.GeneratedAt.Equal(rep.GeneratedAt) {
				t.Errorf("run.GeneratedAt = %v, want %v", run.GeneratedAt, rep.GeneratedAt)
			}
			if run.Summary != rep.Summary {
				t.Errorf("run.Summary = %+v, want %+v", run.Summary, rep.Summary)
			}
			if run.BlobID == "" {
				t.Error("Commit() returned a run without a blob ID")
			}

			got, err := tr.GetRun(context.Background(), run.ID)
			if err != nil {
				t.Fatalf("GetRun() error = %v", err)
			}
			if !reflect.DeepEqual(got, run) {
				t.Errorf("GetRun() = %+v, want %+v", got, run)
			}
		})
	}
}

func TestTracker_CommitRejectsNilReport(t *testing.T) {
	t.Parallel()

	for _, f := range trackerFactories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			tr := f.make(t, nil)

			if _, err := tr.Commit(context.Background(), nil); err == nil {
				t.Error("Commit(nil) did not return an error")
			}
		})
	}
}

func TestTracker_GetReportRoundTrips(t *testing.T) {
	t.Parallel()

	for _, f := range trackerFactories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			tr := f.make(t, nil)

			rep := pageReport("https://example.com/docs", time.Time{},
				finding(report.SeverityWarning, report.CategoryHeadings, "Page has no heading elements (h1-h6)", ""),
				report.Finding{
					Severity:       report.SeverityError,
					Category:       report.CategoryContrast,
					Message:        "Text contrast 2.85:1 is below the required 4.5:1",
					ElementSnippet: `<p id="intro">Welcome</p>`,
					Selector:       "#intro",
					Details: &report.ContrastDetails{
						Ratio:               2.85,
						Required:            4.5,
						FontSize:            16,
						FontWeight:          400,
						Foreground:          "#999999",
						Background:          "#ffffff",
						SuggestedForeground: "#000000",
					},
				})

			run, err := tr.Commit(context.Background(), rep)
			if err != nil {
				t.Fatalf("Commit() error = %v", err)
			}

			got, err := tr.GetReport(context.Background(), run.ID)
			if err != nil {
				t.Fatalf("GetReport() error = %v", err)
			}
			if got.SourceURL != rep.SourceURL {
				t.Errorf("report.SourceURL = %q, want %q", got.SourceURL, rep.SourceURL)
			}
			if !got.GeneratedAt.Equal(rep.GeneratedAt) {
				t.Errorf("report.GeneratedAt = %v, want %v", got.GeneratedAt, rep.GeneratedAt)
			}
			if !reflect.DeepEqual(got.Findings, rep.Findings) {
				t.Errorf("report.Findings = %+v, want %+v", got.Findings, rep.Findings)
			}
			if got.Summary != rep.Summary {
				t.Errorf("report.Summary = %+v, want %+v", got.Summary, rep.Summary)
			}
		})
	}
}

func TestTracker_ListRunsNewestFirst(t *testing.T) {
	t.Parallel()

	for _, f := range trackerFactories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			tr := f.make(t, nil)
			ctx := context.Background()

			base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
			for i := 0; i < 3; i++ {
				rep := pageReport("https://example.com/a", base.Add(time.Duration(i)*time.Hour),
					finding(report.SeverityError, report.CategoryImages, "Image has no alt attribute", "#hero"))
				if _, err := tr.Commit(ctx, rep); err != nil {
					t.Fatalf("Commit() error = %v", err)
				}
			}
			if _, err := tr.Commit(ctx, pageReport("https://example.com/b", base)); err != nil {
				t.Fatalf("Commit() error = %v", err)
			}

			runs, err := tr.ListRuns(ctx, "https://example.com/a", 0)
			if err != nil {
				t.Fatalf("ListRuns() error = %v", err)
			}
			if len(runs) != 3 {
				t.Fatalf("ListRuns() returned %d runs, want 3", len(runs))
			}
			for i, want := range []time.Time{base.Add(2 * time.Hour), base.Add(time.Hour), base} {
				if !runs[i].GeneratedAt.Equal(want) {
					t.Errorf("runs[%d].GeneratedAt = %v, want %v", i, runs[i].GeneratedAt, want)
				}
			}

			all, err := tr.ListRuns(ctx, "", 0)
			if err != nil {
				t.Fatalf("ListRuns(all) error = %v", err)
			}
			if len(all) != 4 {
				t.Errorf("ListRuns(all) returned %d runs, want 4", len(all))
			}

			limited, err := tr.ListRuns(ctx, "https://example.com/a", 2)
			if err != nil {
				t.Fatalf("ListRuns(limit) error = %v", err)
			}
			if len(limited) != 2 {
				t.Fatalf("ListRuns(limit=2) returned %d runs, want 2", len(limited))
			}
			if !limited[0].GeneratedAt.Equal(base.Add(2 * time.Hour)) {
				t.Errorf("limited list does not start at the newest run")
			}
		})
	}
}

func TestTracker_ListRunsCanonicalizesFilter(t *testing.T) {
	t.Parallel()

	for _, f := range trackerFactories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			tr := f.make(t, nil)
			ctx := context.Background()

			if _, err := tr.Commit(ctx, pageReport("https://example.com/a", time.Time{})); err != nil {
				t.Fatalf("Commit() error = %v", err)
			}

			runs, err := tr.ListRuns(ctx, "https://EXAMPLE.com/a/?utm_source=mail", 0)
			if err != nil {
				t.Fatalf("ListRuns() error = %v", err)
			}
			if len(runs) != 1 {
				t.Errorf("ListRuns() with equivalent URL spelling returned %d runs, want 1", len(runs))
			}
		})
	}
}

func TestTracker_UnknownRunID(t *testing.T) {
	t.Parallel()

	for _, f := range trackerFactories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			tr := f.make(t, nil)
			ctx := context.Background()

			run, err := tr.Commit(ctx, pageReport("https://example.com/a", time.Time{}))
			if err != nil {
				t.Fatalf("Commit() error = %v", err)
			}

			if _, err := tr.GetRun(ctx, "missing"); !errors.Is(err, tracker.ErrRunNotFound) {
				t.Errorf("GetRun(missing) error = %v, want ErrRunNotFound", err)
			}
			if _, err := tr.GetReport(ctx, "missing"); !errors.Is(err, tracker.ErrRunNotFound) {
				t.Errorf("GetReport(missing) error = %v, want ErrRunNotFound", err)
			}
			if _, err := tr.DiffRuns(ctx, run.ID, "missing"); !errors.Is(err, tracker.ErrRunNotFound) {
				t.Errorf("DiffRuns(run, missing) error = %v, want ErrRunNotFound", err)
			}
		})
	}
}

func TestTracker_DiffRuns(t *testing.T) {
	t.Parallel()

	shared := finding(report.SeverityWarning, report.CategoryHeadings, "Page has no heading elements (h1-h6)", "")
	imgErr := finding(report.SeverityError, report.CategoryImages, "Image has no alt attribute", "#hero")
	langErr := finding(report.SeverityError, report.CategoryLanguage, "Document has no lang attribute", "html")

	for _, f := range trackerFactories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			tr := f.make(t, nil)
			ctx := context.Background()

			at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
			baseRun, err := tr.Commit(ctx, pageReport("https://example.com/a", at, imgErr, shared))
			if err != nil {
				t.Fatalf("Commit(base) error = %v", err)
			}
			headRun, err := tr.Commit(ctx, pageReport("https://example.com/a", at.Add(time.Hour), shared, langErr))
			if err != nil {
				t.Fatalf("Commit(head) error = %v", err)
			}

			diff, err := tr.DiffRuns(ctx, baseRun.ID, headRun.ID)
			if err != nil {
				t.Fatalf("DiffRuns() error = %v", err)
			}

			if diff.BaseID != baseRun.ID || diff.HeadID != headRun.ID {
				t.Errorf("diff identifies runs %s..%s, want %s..%s", diff.BaseID, diff.HeadID, baseRun.ID, headRun.ID)
			}
			if len(diff.Introduced) != 1 || diff.Introduced[0].Message != langErr.Message {
				t.Errorf("diff.Introduced = %+v, want the language finding only", diff.Introduced)
			}
			if len(diff.Resolved) != 1 || diff.Resolved[0].Message != imgErr.Message {
				t.Errorf("diff.Resolved = %+v, want the image finding only", diff.Resolved)
			}
			if diff.BaseSummary != baseRun.Summary || diff.HeadSummary != headRun.Summary {
				t.Errorf("diff summaries = %+v / %+v, want the stored run summaries", diff.BaseSummary, diff.HeadSummary)
			}
			if len(diff.TextChunks) == 0 {
				t.Error("diff.TextChunks is empty for runs with different findings")
			}
			for _, chunk := range diff.TextChunks {
				if chunk.Type != "added" && chunk.Type != "removed" {
					t.Errorf("diff chunk has type %q, want added or removed", chunk.Type)
				}
			}
		})
	}
}

func TestTracker_DiffRunsWithSameFindings(t *testing.T) {
	t.Parallel()

	imgErr := finding(report.SeverityError, report.CategoryImages, "Image has no alt attribute", "#hero")

	for _, f := range trackerFactories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			tr := f.make(t, nil)
			ctx := context.Background()

			at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
			baseRun, err := tr.Commit(ctx, pageReport("https://example.com/a", at, imgErr))
			if err != nil {
				t.Fatalf("Commit(base) error = %v", err)
			}
			headRun, err := tr.Commit(ctx, pageReport("https://example.com/a", at.Add(time.Hour), imgErr))
			if err != nil {
				t.Fatalf("Commit(head) error = %v", err)
			}

			diff, err := tr.DiffRuns(ctx, baseRun.ID, headRun.ID)
			if err != nil {
				t.Fatalf("DiffRuns() error = %v", err)
			}
			if len(diff.Introduced) != 0 {
				t.Errorf("diff.Introduced = %+v, want none for identical findings", diff.Introduced)
			}
			if len(diff.Resolved) != 0 {
				t.Errorf("diff.Resolved = %+v, want none for identical findings", diff.Resolved)
			}
		})
	}
}

func TestTracker_DiffRunsRejectsDifferentPages(t *testing.T) {
	t.Parallel()

	for _, f := range trackerFactories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			tr := f.make(t, nil)
			ctx := context.Background()

			a, err := tr.Commit(ctx, pageReport("https://example.com/a", time.Time{}))
			if err != nil {
				t.Fatalf("Commit(a) error = %v", err)
			}
			b, err := tr.Commit(ctx, pageReport("https://example.com/b", time.Time{}))
			if err != nil {
				t.Fatalf("Commit(b) error = %v", err)
			}

			_, err = tr.DiffRuns(ctx, a.ID, b.ID)
			if !errors.Is(err, tracker.ErrMismatchedRuns) {
				t.Errorf("DiffRuns() error = %v, want ErrMismatchedRuns", err)
			}
		})
	}
}

func TestTracker_MaxHistoryPrunes(t *testing.T) {
	t.Parallel()

	for _, f := range trackerFactories() {
		f := f
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			tr := f.make(t, &tracker.Config{MaxHistory: 2})
			ctx := context.Background()

			base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
			var runs []*tracker.Run
			for i := 0; i < 3; i++ {
				rep := pageReport("https://example.com/a", base.Add(time.Duration(i)*time.Hour),
					finding(report.SeverityError, report.CategoryImages, "Image has no alt attribute", "#hero"),
					finding(report.SeverityWarning, report.CategoryARIA, "round "+strings.Repeat("x", i+1), "#w"))
				run, err := tr.Commit(ctx, rep)
				if err != nil {
					t.Fatalf("Commit(%d) error = %v", i, err)
				}
				runs = append(runs, run)
			}

			kept, err := tr.ListRuns(ctx, "https://example.com/a", 0)
			if err != nil {
				t.Fatalf("ListRuns() error = %v", err)
			}
			if len(kept) != 2 {
				t.Fatalf("ListRuns() returned %d runs after pruning, want 2", len(kept))
			}
			if kept[0].ID != runs[2].ID || kept[1].ID != runs[1].ID {
				t.Errorf("pruning kept runs %s, %s; want the two newest", kept[0].ID, kept[1].ID)
			}

			if _, err := tr.GetRun(ctx, runs[0].ID); !errors.Is(err, tracker.ErrRunNotFound) {
				t.Errorf("GetRun(pruned) error = %v, want ErrRunNotFound", err)
			}
			if _, err := tr.GetReport(ctx, runs[0].ID); !errors.Is(err, tracker.ErrRunNotFound) {
				t.Errorf("GetReport(pruned) error = %v, want ErrRunNotFound", err)
			}
		})
	}
}
