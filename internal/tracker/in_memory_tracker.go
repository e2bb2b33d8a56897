package tracker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/report"
	"github.com/raysh454/miru/internal/utils"
)

// MemoryTracker keeps audit history in process memory. It backs runs
// without a configured workspace and tests; history disappears with the
// process.
type MemoryTracker struct {
	mu      sync.RWMutex
	runs    []*Run            // insertion order, oldest first
	reports map[string][]byte // run ID -> marshaled report
	config  *Config
	logger  logging.Logger
}

// Ensure MemoryTracker implements Tracker at compile-time.
var _ Tracker = (*MemoryTracker)(nil)

// NewMemoryTracker constructs an empty in-memory tracker.
func NewMemoryTracker(cfg *Config, logger logging.Logger) *MemoryTracker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &MemoryTracker{
		reports: make(map[string][]byte),
		config:  cfg.withDefaults(),
		logger:  logger.With(logging.Field{Key: "component", Value: "tracker"}),
	}
}

// Commit stores a report as a new run for its canonical page URL and
// prunes history beyond MaxHistory.
func (t *MemoryTracker) Commit(ctx context.Context, rep *report.Report) (*Run, error) {
	if rep == nil {
		return nil, errors.New("report cannot be nil")
	}

	canonical, err := utils.CanonicalPageURL(rep.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize report URL %q: %w", rep.SourceURL, err)
	}

	body, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	hash := sha256.Sum256(body)

	run := &Run{
		ID:          uuid.New().String(),
		URL:         canonical,
		SourceURL:   rep.SourceURL,
		GeneratedAt: rep.GeneratedAt,
		Summary:     rep.Summary,
		BlobID:      hex.EncodeToString(hash[:]),
	}
	if run.GeneratedAt.IsZero() {
		run.GeneratedAt = time.Now().UTC()
	}

	t.mu.Lock()
	t.runs = append(t.runs, run)
	t.reports[run.ID] = body
	t.pruneLocked(run.URL)
	t.mu.Unlock()

	t.logger.Info("Run committed",
		logging.Field{Key: "runID", Value: run.ID},
		logging.Field{Key: "url", Value: run.URL},
		logging.Field{Key: "findings", Value: run.Summary.Total})

	cp := *run
	return &cp, nil
}

// pruneLocked drops the oldest runs of a URL beyond MaxHistory.
// Callers must hold the write lock.
func (t *MemoryTracker) pruneLocked(url string) {
	if t.config.MaxHistory <= 0 {
		return
	}

	type candidate struct {
		idx int
		at  time.Time
	}
	var candidates []candidate
	for i, r := range t.runs {
		if r.URL == url {
			candidates = append(candidates, candidate{idx: i, at: r.GeneratedAt})
		}
	}
	if len(candidates) <= t.config.MaxHistory {
		return
	}

	// Newest first; later commits win ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].at.Equal(candidates[j].at) {
			return candidates[i].at.After(candidates[j].at)
		}
		return candidates[i].idx > candidates[j].idx
	})

	drop := make(map[int]bool)
	for _, c := range candidates[t.config.MaxHistory:] {
		drop[c.idx] = true
		delete(t.reports, t.runs[c.idx].ID)
	}

	kept := t.runs[:0]
	for i, r := range t.runs {
		if !drop[i] {
			kept = append(kept, r)
		}
	}
	t.runs = kept
}

// ListRuns returns runs newest first, optionally filtered to one page.
func (t *MemoryTracker) ListRuns(ctx context.Context, url string, limit int) ([]*Run, error) {
	filter := ""
	if url != "" {
		canonical, err := utils.CanonicalPageURL(url)
		if err != nil {
			return nil, fmt.Errorf("failed to canonicalize url filter %q: %w", url, err)
		}
		filter = canonical
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Run, 0, len(t.runs))
	for i := len(t.runs) - 1; i >= 0; i-- {
		r := t.runs[i]
		if filter != "" && r.URL != filter {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetRun returns one run's metadata.
func (t *MemoryTracker) GetRun(ctx context.Context, runID string) (*Run, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, r := range t.runs {
		if r.ID == runID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
}

// GetReport loads a run's full report.
func (t *MemoryTracker) GetReport(ctx context.Context, runID string) (*report.Report, error) {
	t.mu.RLock()
	body, ok := t.reports[runID]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	var rep report.Report
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report for run %s: %w", runID, err)
	}
	return &rep, nil
}

// DiffRuns compares two runs of the same page.
func (t *MemoryTracker) DiffRuns(ctx context.Context, baseID, headID string) (*RunDiff, error) {
	baseRun, err := t.GetRun(ctx, baseID)
	if err != nil {
		return nil, err
	}
	headRun, err := t.GetRun(ctx, headID)
	if err != nil {
		return nil, err
	}

	baseRep, err := t.GetReport(ctx, baseID)
	if err != nil {
		return nil, err
	}
	headRep, err := t.GetReport(ctx, headID)
	if err != nil {
		return nil, err
	}

	return buildRunDiff(baseRun, headRun, baseRep, headRep)
}

// Close is a no-op; memory is released with the process.
func (t *MemoryTracker) Close() error {
	return nil
}
