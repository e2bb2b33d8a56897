// Package tracker persists audit history: run metadata in SQLite, full
// report JSON in a content-addressed blob store. It answers what a page
// audited to over time and how two runs differ.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/raysh454/miru/internal/report"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("tracker: run not found")

// ErrMismatchedRuns is returned when a diff is requested across runs of
// different pages.
var ErrMismatchedRuns = errors.New("tracker: runs audit different pages")

// Run is the stored metadata of one committed audit.
type Run struct {
	// ID is the run identifier.
	ID string `json:"id"`

	// URL is the canonical page URL history is grouped under.
	URL string `json:"url"`

	// SourceURL is the URL exactly as the report carried it.
	SourceURL string `json:"source_url"`

	// GeneratedAt is the report's generation time.
	GeneratedAt time.Time `json:"generated_at"`

	// Summary counts copied from the report.
	Summary report.Summary `json:"summary"`

	// BlobID addresses the full report JSON in the blob store.
	BlobID string `json:"blob_id"`
}

// DiffChunk is one contiguous change in the text rendering of two reports.
type DiffChunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content,omitempty"`
}

// RunDiff describes how a page's findings moved between two runs.
type RunDiff struct {
	BaseID string `json:"base_id"`
	HeadID string `json:"head_id"`

	// Introduced are findings present in head but not in base; Resolved the
	// reverse. Findings match on severity, category, message and element
	// reference.
	Introduced []report.Finding `json:"introduced"`
	Resolved   []report.Finding `json:"resolved"`

	BaseSummary report.Summary `json:"base_summary"`
	HeadSummary report.Summary `json:"head_summary"`

	// TextChunks is the cleaned text-level diff of the two rendered reports.
	TextChunks []DiffChunk `json:"text_chunks"`
}

// Tracker records audit runs and serves their history.
// Implementations are safe for concurrent use.
type Tracker interface {
	// Commit stores a report and returns the new run.
	Commit(ctx context.Context, rep *report.Report) (*Run, error)

	// ListRuns returns runs newest first. A non-empty url filters to that
	// page (canonicalized first); limit <= 0 means no limit.
	ListRuns(ctx context.Context, url string, limit int) ([]*Run, error)

	// GetRun returns one run's metadata.
	GetRun(ctx context.Context, runID string) (*Run, error)

	// GetReport loads a run's full report.
	GetReport(ctx context.Context, runID string) (*report.Report, error)

	// DiffRuns compares two runs of the same page, base first.
	DiffRuns(ctx context.Context, baseID, headID string) (*RunDiff, error)

	// Close releases resources used by the tracker.
	Close() error
}
