// Package runner audits many pages with bounded concurrency, feeding
// finished reports to the tracker through a single history writer.
package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/raysh454/miru/internal/audit"
	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/report"
	"github.com/raysh454/miru/internal/snapshot"
	"github.com/raysh454/miru/internal/tracker"
)

// PageResult is the outcome of auditing one page.
type PageResult struct {
	URL    string
	Report *report.Report
	// Run is set once the report is recorded in history; nil when no
	// tracker is attached or the commit failed.
	Run *tracker.Run
	Err error
}

// Runner drives captures and audits over a worker pool. The tracker is
// optional; when nil no history is recorded.
type Runner struct {
	config  *Config
	source  snapshot.Source
	auditor *audit.Auditor
	tracker tracker.Tracker
	logger  logging.Logger
}

// New creates a Runner. source and auditor are required.
func New(cfg *Config, source snapshot.Source, auditor *audit.Auditor, tr tracker.Tracker, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Runner{
		config:  cfg.withDefaults(),
		source:  source,
		auditor: auditor,
		tracker: tr,
		logger:  logger.With(logging.Field{Key: "component", Value: "runner"}),
	}
}

// commitItem routes a finished report to the history writer together with
// its slot in the results slice.
type commitItem struct {
	idx int
	rep *report.Report
}

// Run audits every page and returns results in input order. onResult, if
// non-nil, is called as each page finishes; calls may be concurrent. The
// returned error is the context error when the run was cut short.
func (r *Runner) Run(ctx context.Context, pages []string, onResult func(PageResult)) ([]PageResult, error) {
	results := make([]PageResult, len(pages))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.config.MaxConcurrency)

	var (
		commitCh   chan commitItem
		commitDone chan struct{}
	)
	if r.tracker != nil {
		commitCh = make(chan commitItem)
		commitDone = make(chan struct{})
		go r.commitLoop(ctx, commitCh, commitDone, results)
	}

	for i, page := range pages {
		if ctx.Err() != nil {
			results[i] = PageResult{URL: page, Err: ctx.Err()}
			continue
		}

		wg.Add(1)
		go func(i int, page string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			res := r.auditPage(ctx, page)
			results[i] = res
			if onResult != nil {
				onResult(res)
			}

			if commitCh != nil && res.Err == nil {
				select {
				case <-ctx.Done():
				case commitCh <- commitItem{idx: i, rep: res.Report}:
				}
			}
		}(i, page)
	}

	wg.Wait()
	if commitCh != nil {
		close(commitCh)
		<-commitDone
	}

	return results, ctx.Err()
}

func (r *Runner) auditPage(ctx context.Context, url string) PageResult {
	doc, err := r.source.Capture(ctx, url)
	if err != nil {
		r.logger.Error("error while capturing page",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
		return PageResult{URL: url, Err: fmt.Errorf("capture %s: %w", url, err)}
	}

	return PageResult{URL: url, Report: r.auditor.Run(doc)}
}

// commitLoop serializes history writes, flushing in CommitSize groups.
func (r *Runner) commitLoop(ctx context.Context, items <-chan commitItem, done chan<- struct{}, results []PageResult) {
	defer close(done)

	batch := make([]commitItem, 0, r.config.CommitSize)
	flush := func() {
		for _, item := range batch {
			run, err := r.tracker.Commit(ctx, item.rep)
			if err != nil {
				r.logger.Error("error while committing audit run",
					logging.Field{Key: "url", Value: item.rep.SourceURL},
					logging.Field{Key: "error", Value: err.Error()})
				continue
			}
			results[item.idx].Run = run
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case item, ok := <-items:
			if !ok {
				flush()
				return
			}
			batch = append(batch, item)
			if len(batch) == r.config.CommitSize {
				flush()
			}
		}
	}
}
