// Package app wires the audit services together: shared components, the job
// orchestrator behind the API server, and the one-shot application behind
// the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/miru/internal/enumerator"
	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/report"
	"github.com/raysh454/miru/internal/runner"
	"github.com/raysh454/miru/internal/tracker"
)

// ErrOrchestratorClosed is returned when a job is submitted after Close.
var ErrOrchestratorClosed = errors.New("orchestrator is closed")

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

// JobEvent is one item on a job's event stream.
type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	Processed int `json:"processed,omitempty"`
	Total     int `json:"total,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

type JobType string

const (
	// JobPage audits a single page.
	JobPage JobType = "page"

	// JobSite crawls same-origin pages from the seed and audits each one.
	JobSite JobType = "site"
)

// PageOutcome summarizes one audited page of a site job. The full report is
// available from history under RunID.
type PageOutcome struct {
	URL     string          `json:"url"`
	RunID   string          `json:"run_id,omitempty"`
	Summary *report.Summary `json:"summary,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Job is one asynchronous audit. Events carries the live status stream; it
// is closed when the job reaches a terminal status, so a subscriber can
// range over it.
type Job struct {
	ID        string        `json:"id"`
	Type      JobType       `json:"type"`
	URL       string        `json:"url"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Events    chan JobEvent `json:"-"`

	// Results, populated on completion:
	Report *report.Report `json:"report,omitempty"` // page jobs
	RunID  string         `json:"run_id,omitempty"` // page jobs with history
	Pages  []PageOutcome  `json:"pages,omitempty"`  // site jobs
}

// Orchestrator runs audit jobs in the background and keeps their lifecycle
// observable. Jobs run one goroutine each over a shared set of components.
type Orchestrator struct {
	cfg    *Config
	logger logging.Logger

	compMu sync.Mutex
	comps  *Components

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
	closed     bool

	done      chan struct{}
	closeOnce sync.Once
}

// NewOrchestrator ties together config and logger. Call Close to release
// the shared components and stop background work.
func NewOrchestrator(cfg *Config, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	o := &Orchestrator{
		cfg:        cfg,
		logger:     logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
		done:       make(chan struct{}),
	}
	if cfg.JobRetentionTime > 0 {
		go o.janitor()
	}
	return o
}

// StartPageAudit begins an asynchronous audit of one page.
func (o *Orchestrator) StartPageAudit(ctx context.Context, url string) (*Job, error) {
	return o.start(ctx, JobPage, url, o.runPageJob)
}

// StartSiteAudit begins an asynchronous crawl-and-audit of the site reachable
// from the seed URL.
func (o *Orchestrator) StartSiteAudit(ctx context.Context, url string) (*Job, error) {
	return o.start(ctx, JobSite, url, o.runSiteJob)
}

func (o *Orchestrator) start(ctx context.Context, typ JobType, url string, work func(context.Context, *Job) error) (*Job, error) {
	if o.isClosed() {
		return nil, ErrOrchestratorClosed
	}
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("url is required")
	}

	job := o.newJob(typ, url)
	o.setJob(job)

	jobCtx, cancel := context.WithCancel(ctx)
	o.setCancel(job.ID, cancel)

	o.emitJobEvent(job.ID, JobEvent{JobID: job.ID, Type: JobEventStatus, Status: JobPending})
	o.logger.Info("Job started",
		logging.Field{Key: "job_id", Value: job.ID},
		logging.Field{Key: "type", Value: string(typ)},
		logging.Field{Key: "url", Value: url})

	go o.run(jobCtx, cancel, job, work)

	cp := *job
	return &cp, nil
}

// run drives one job to a terminal status. Cancellation wins over both
// success and failure so a cancel near the finish line still reads as
// canceled.
func (o *Orchestrator) run(ctx context.Context, cancel context.CancelFunc, job *Job, work func(context.Context, *Job) error) {
	defer cancel()
	defer o.finishJob(job.ID)

	o.transition(job.ID, JobRunning, "")

	err := work(ctx, job)
	switch {
	case ctx.Err() != nil:
		o.transition(job.ID, JobCanceled, ctx.Err().Error())
	case err != nil:
		o.logger.Error("Job failed",
			logging.Field{Key: "job_id", Value: job.ID},
			logging.Field{Key: "error", Value: err.Error()})
		o.transition(job.ID, JobFailed, err.Error())
	default:
		o.transition(job.ID, JobDone, "")
	}
}

func (o *Orchestrator) runPageJob(ctx context.Context, job *Job) error {
	comps, err := o.components()
	if err != nil {
		return err
	}

	doc, err := comps.Source.Capture(ctx, job.URL)
	if err != nil {
		return fmt.Errorf("capture %s: %w", job.URL, err)
	}

	rep := comps.Auditor.Run(doc)

	var runID string
	if comps.Tracker != nil {
		if run, err := comps.Tracker.Commit(ctx, rep); err != nil {
			// The report itself is sound, so history failure is not fatal.
			o.logger.Warn("Failed to record audit run",
				logging.Field{Key: "job_id", Value: job.ID},
				logging.Field{Key: "error", Value: err.Error()})
		} else {
			runID = run.ID
		}
	}

	o.jobsMu.Lock()
	if j, ok := o.jobs[job.ID]; ok {
		j.Report = rep
		j.RunID = runID
	}
	o.jobsMu.Unlock()
	return nil
}

func (o *Orchestrator) runSiteJob(ctx context.Context, job *Job) error {
	comps, err := o.components()
	if err != nil {
		return err
	}

	spider := enumerator.NewSpider(&o.cfg.Enumerator, comps.WebClient, o.logger)
	pages, err := spider.Enumerate(ctx, job.URL)
	if err != nil {
		return fmt.Errorf("enumerate %s: %w", job.URL, err)
	}
	o.emitJobEvent(job.ID, JobEvent{JobID: job.ID, Type: JobEventProgress, Total: len(pages)})

	progress := o.progressCallback(job.ID)
	var (
		mu        sync.Mutex
		completed int
	)

	pool := runner.New(&o.cfg.Runner, comps.Source, comps.Auditor, comps.Tracker, o.logger)
	results, err := pool.Run(ctx, pages, func(runner.PageResult) {
		mu.Lock()
		completed++
		n := completed
		mu.Unlock()
		progress(n, len(pages))
	})
	if err != nil {
		return err
	}

	outcomes := make([]PageOutcome, 0, len(results))
	for _, res := range results {
		out := PageOutcome{URL: res.URL}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		if res.Report != nil {
			s := res.Report.Summary
			out.Summary = &s
		}
		if res.Run != nil {
			out.RunID = res.Run.ID
		}
		outcomes = append(outcomes, out)
	}

	o.jobsMu.Lock()
	if j, ok := o.jobs[job.ID]; ok {
		j.Pages = outcomes
	}
	o.jobsMu.Unlock()
	return nil
}

// components returns the shared services, building them on first use.
func (o *Orchestrator) components() (*Components, error) {
	o.compMu.Lock()
	defer o.compMu.Unlock()
	if o.isClosed() {
		return nil, ErrOrchestratorClosed
	}
	if o.comps != nil {
		return o.comps, nil
	}
	comps, err := NewComponents(o.cfg, o.logger)
	if err != nil {
		return nil, err
	}
	o.comps = comps
	return comps, nil
}

// Tracker exposes the shared history store for read access, building the
// components on first use.
func (o *Orchestrator) Tracker() (tracker.Tracker, error) {
	comps, err := o.components()
	if err != nil {
		return nil, err
	}
	return comps.Tracker, nil
}

func (o *Orchestrator) newJob(typ JobType, url string) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Type:      typ,
		URL:       url,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 16),
	}
}

func (o *Orchestrator) setJob(job *Job) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	o.jobs[job.ID] = job
}

func (o *Orchestrator) setCancel(jobID string, cancel context.CancelFunc) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	o.jobCancels[jobID] = cancel
}

func (o *Orchestrator) isClosed() bool {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	return o.closed
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if the buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

// progressCallback returns a func that reports site-audit progress on the
// job's event stream.
func (o *Orchestrator) progressCallback(jobID string) func(processed, total int) {
	return func(processed, total int) {
		o.emitJobEvent(jobID, JobEvent{
			JobID:     jobID,
			Type:      JobEventProgress,
			Processed: processed,
			Total:     total,
		})
	}
}

func (o *Orchestrator) transition(jobID string, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	j, ok := o.jobs[jobID]
	if ok {
		j.Status = status
		if errMsg != "" {
			j.Error = errMsg
		}
	}
	o.jobsMu.Unlock()
	if !ok {
		return
	}

	evType := JobEventStatus
	if status == JobDone {
		evType = JobEventResult
	}
	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: evType, Status: status, Error: errMsg})
}

// finishJob stamps the end time and closes the event stream so subscribers
// ranging over it terminate.
func (o *Orchestrator) finishJob(jobID string) {
	o.jobsMu.Lock()
	j := o.jobs[jobID]
	if j != nil {
		j.EndedAt = time.Now().UTC()
	}
	delete(o.jobCancels, jobID)
	o.jobsMu.Unlock()

	if j != nil && j.Events != nil {
		close(j.Events)
	}
}

// GetJob returns a snapshot of the job, or nil when unknown. The snapshot
// shares the live Events channel.
func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok {
		return nil
	}
	cp := *j
	return &cp
}

// ListJobs returns snapshots of all known jobs, newest first.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	out := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		cp := *j
		out = append(out, &cp)
	}
	o.jobsMu.Unlock()

	sort.Slice(out, func(i, k int) bool {
		if !out[i].StartedAt.Equal(out[k].StartedAt) {
			return out[i].StartedAt.After(out[k].StartedAt)
		}
		return out[i].ID < out[k].ID
	})
	return out
}

// CancelJob requests cancellation of a running job. Unknown or finished
// jobs are a no-op.
func (o *Orchestrator) CancelJob(jobID string) {
	o.jobsMu.Lock()
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close cancels running jobs, stops background work and releases the shared
// components. Safe to call more than once.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		close(o.done)

		o.jobsMu.Lock()
		o.closed = true
		cancels := make([]context.CancelFunc, 0, len(o.jobCancels))
		for _, cancel := range o.jobCancels {
			cancels = append(cancels, cancel)
		}
		o.jobsMu.Unlock()
		for _, cancel := range cancels {
			cancel()
		}

		o.compMu.Lock()
		comps := o.comps
		o.comps = nil
		o.compMu.Unlock()
		if comps != nil {
			if err := comps.Close(); err != nil {
				o.logger.Warn("Failed to close shared components",
					logging.Field{Key: "error", Value: err.Error()})
			}
		}
	})
}

// janitor drops finished jobs once they outlive the retention window.
func (o *Orchestrator) janitor() {
	interval := o.cfg.JobRetentionTime / 2
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	if interval > time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-o.done:
			return
		case <-ticker.C:
			o.pruneJobs()
		}
	}
}

func (o *Orchestrator) pruneJobs() {
	cutoff := time.Now().UTC().Add(-o.cfg.JobRetentionTime)
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	for id, j := range o.jobs {
		if !j.EndedAt.IsZero() && j.EndedAt.Before(cutoff) {
			delete(o.jobs, id)
		}
	}
}
