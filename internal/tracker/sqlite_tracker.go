package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/report"
	"github.com/raysh454/miru/internal/utils"
	_ "modernc.org/sqlite" // SQLite driver
)

const selectRunColumns = `SELECT id, url, source_url, generated_at, total, error_count, warning_count, blob_id FROM runs`

// SQLiteTracker implements Tracker using SQLite for run metadata and a
// content-addressed blob store for report bodies. Everything lives under
// <StoragePath>/.miru so a workspace carries its own history.
type SQLiteTracker struct {
	db     *sql.DB
	store  *FSStore
	logger logging.Logger
	config *Config
}

// Ensure SQLiteTracker implements Tracker at compile-time.
var _ Tracker = (*SQLiteTracker)(nil)

// NewSQLiteTracker opens (or creates) the audit history database under
// cfg.StoragePath. If cfg is nil, default configuration is used.
func NewSQLiteTracker(cfg *Config, logger logging.Logger) (*SQLiteTracker, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Field{Key: "component", Value: "tracker"})

	// Ensure .miru directory exists
	miruDir := filepath.Join(cfg.StoragePath, ".miru")
	if err := os.MkdirAll(miruDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .miru directory: %w", err)
	}

	dbPath := filepath.Join(miruDir, "miru.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply schema and set pragmas
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	store, err := NewFSStore(filepath.Join(miruDir, "blobs"))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create FSStore: %w", err)
	}

	logger.Info("SQLiteTracker initialized", logging.Field{Key: "path", Value: miruDir})

	return &SQLiteTracker{
		db:     db,
		store:  store,
		logger: logger,
		config: cfg,
	}, nil
}

// Commit stores a report as a new run for its canonical page URL and
// prunes history beyond MaxHistory.
func (t *SQLiteTracker) Commit(ctx context.Context, rep *report.Report) (*Run, error) {
	if rep == nil {
		return nil, errors.New("report cannot be nil")
	}

	canonical, err := utils.CanonicalPageURL(rep.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize report URL %q: %w", rep.SourceURL, err)
	}

	t.logger.Debug("Starting commit",
		logging.Field{Key: "url", Value: canonical},
		logging.Field{Key: "findings", Value: rep.Summary.Total})

	body, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	blobID, err := t.store.Put(body)
	if err != nil {
		return nil, fmt.Errorf("failed to store report body: %w", err)
	}
	t.logger.Debug("Stored report body", logging.Field{Key: "blobID", Value: blobID})

	run := &Run{
		ID:          uuid.New().String(),
		URL:         canonical,
		SourceURL:   rep.SourceURL,
		GeneratedAt: rep.GeneratedAt,
		Summary:     rep.Summary,
		BlobID:      blobID,
	}
	if run.GeneratedAt.IsZero() {
		run.GeneratedAt = time.Now().UTC()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			t.logger.Warn("Failed to rollback transaction", logging.Field{Key: "error", Value: rbErr.Error()})
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, url, source_url, generated_at, total, error_count, warning_count, blob_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.URL, run.SourceURL, run.GeneratedAt.UnixNano(),
		run.Summary.Total, run.Summary.ErrorCount, run.Summary.WarningCount, run.BlobID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	staleBlobs, err := t.pruneHistory(ctx, tx, run.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to prune history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Blobs are content-addressed and may back several runs, so only
	// unreferenced ones are removed. Best effort; orphans are harmless.
	for _, stale := range staleBlobs {
		var refs int
		if err := t.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE blob_id = ?`, stale).Scan(&refs); err != nil {
			t.logger.Warn("Failed to count blob references", logging.Field{Key: "error", Value: err.Error()})
			continue
		}
		if refs > 0 {
			continue
		}
		if err := t.store.Delete(stale); err != nil {
			t.logger.Warn("Failed to delete stale blob",
				logging.Field{Key: "blobID", Value: stale},
				logging.Field{Key: "error", Value: err.Error()})
		}
	}

	t.logger.Info("Run committed",
		logging.Field{Key: "runID", Value: run.ID},
		logging.Field{Key: "url", Value: run.URL},
		logging.Field{Key: "findings", Value: run.Summary.Total})

	return run, nil
}

// pruneHistory deletes runs beyond MaxHistory for one URL, oldest first,
// and returns the blob IDs the deleted rows referenced.
func (t *SQLiteTracker) pruneHistory(ctx context.Context, tx *sql.Tx, url string) ([]string, error) {
	if t.config.MaxHistory <= 0 {
		return nil, nil
	}

	// LIMIT -1 OFFSET n skips the newest n rows and selects the rest.
	rows, err := tx.QueryContext(ctx, `
		SELECT id, blob_id FROM runs
		WHERE url = ?
		ORDER BY generated_at DESC, rowid DESC
		LIMIT -1 OFFSET ?
	`, url, t.config.MaxHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale runs: %w", err)
	}

	var staleIDs, staleBlobs []string
	for rows.Next() {
		var id, blobID string
		if err := rows.Scan(&id, &blobID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan stale run: %w", err)
		}
		staleIDs = append(staleIDs, id)
		staleBlobs = append(staleBlobs, blobID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate stale runs: %w", err)
	}
	rows.Close()

	for _, id := range staleIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("failed to delete run %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM diffs WHERE base_run_id = ? OR head_run_id = ?`, id, id); err != nil {
			return nil, fmt.Errorf("failed to delete diffs for run %s: %w", id, err)
		}
	}

	if len(staleIDs) > 0 {
		t.logger.Debug("Pruned history",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "pruned", Value: len(staleIDs)})
	}

	return staleBlobs, nil
}

// ListRuns returns runs newest first, optionally filtered to one page.
func (t *SQLiteTracker) ListRuns(ctx context.Context, url string, limit int) ([]*Run, error) {
	query := selectRunColumns
	args := []any{}

	if url != "" {
		canonical, err := utils.CanonicalPageURL(url)
		if err != nil {
			return nil, fmt.Errorf("failed to canonicalize url filter %q: %w", url, err)
		}
		query += ` WHERE url = ?`
		args = append(args, canonical)
	}

	query += ` ORDER BY generated_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// GetRun returns one run's metadata.
func (t *SQLiteTracker) GetRun(ctx context.Context, runID string) (*Run, error) {
	run, err := scanRun(t.db.QueryRowContext(ctx, selectRunColumns+` WHERE id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return run, nil
}

// GetReport loads a run's full report from the blob store.
func (t *SQLiteTracker) GetReport(ctx context.Context, runID string) (*report.Report, error) {
	run, err := t.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	data, err := t.store.Get(run.BlobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report body: %w", err)
	}

	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report for run %s: %w", runID, err)
	}
	return &rep, nil
}

// DiffRuns compares two runs of the same page. Computed diffs are cached
// in the diffs table keyed on the run pair.
func (t *SQLiteTracker) DiffRuns(ctx context.Context, baseID, headID string) (*RunDiff, error) {
	var diffJSON string
	err := t.db.QueryRowContext(ctx,
		`SELECT diff_json FROM diffs WHERE base_run_id = ? AND head_run_id = ?`,
		baseID, headID).Scan(&diffJSON)
	switch {
	case err == nil:
		var cached RunDiff
		if jsonErr := json.Unmarshal([]byte(diffJSON), &cached); jsonErr == nil {
			return &cached, nil
		}
		t.logger.Warn("Discarding unreadable cached diff",
			logging.Field{Key: "baseID", Value: baseID},
			logging.Field{Key: "headID", Value: headID})
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to query diff cache: %w", err)
	}

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

	diff, err := buildRunDiff(baseRun, headRun, baseRep, headRep)
	if err != nil {
		return nil, err
	}

	if data, marshalErr := json.Marshal(diff); marshalErr == nil {
		_, execErr := t.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO diffs (id, base_run_id, head_run_id, diff_json, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, uuid.New().String(), baseID, headID, string(data), time.Now().UnixNano())
		if execErr != nil {
			t.logger.Warn("Failed to cache diff", logging.Field{Key: "error", Value: execErr.Error()})
		}
	}

	return diff, nil
}

// Close closes the underlying database.
func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run         Run
		generatedNs int64
	)
	err := row.Scan(&run.ID, &run.URL, &run.SourceURL, &generatedNs,
		&run.Summary.Total, &run.Summary.ErrorCount, &run.Summary.WarningCount, &run.BlobID)
	if err != nil {
		return nil, err
	}
	run.GeneratedAt = time.Unix(0, generatedNs).UTC()
	return &run, nil
}
