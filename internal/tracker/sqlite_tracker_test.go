package tracker_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/raysh454/miru/internal/report"
	"github.com/raysh454/miru/internal/tracker"
)

func TestSQLiteTracker_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := &tracker.Config{StoragePath: dir}
	ctx := context.Background()

	tr, err := tracker.NewSQLiteTracker(cfg, nil)
	if err != nil {
		t.Fatalf("NewSQLiteTracker() error = %v", err)
	}

	rep := pageReport("https://example.com/docs", time.Time{},
		finding(report.SeverityError, report.CategoryImages, "Image has no alt attribute", "#hero"))
	run, err := tr.Commit(ctx, rep)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := tracker.NewSQLiteTracker(cfg, nil)
	if err != nil {
		t.Fatalf("NewSQLiteTracker(reopen) error = %v", err)
	}
	t.Cleanup(func() { reopened.Close() })

	runs, err := reopened.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Fatalf("ListRuns() after reopen = %+v, want the committed run", runs)
	}

	got, err := reopened.GetReport(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetReport() after reopen error = %v", err)
	}
	if !reflect.DeepEqual(got.Findings, rep.Findings) {
		t.Errorf("GetReport() after reopen findings = %+v, want %+v", got.Findings, rep.Findings)
	}
}

func TestSQLiteTracker_WorkspaceLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tr, err := tracker.NewSQLiteTracker(&tracker.Config{StoragePath: dir}, nil)
	if err != nil {
		t.Fatalf("NewSQLiteTracker() error = %v", err)
	}
	t.Cleanup(func() { tr.Close() })

	run, err := tr.Commit(context.Background(), pageReport("https://example.com/a", time.Time{}))
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".miru", "miru.db")); err != nil {
		t.Errorf("database file missing: %v", err)
	}
	blobPath := filepath.Join(dir, ".miru", "blobs", run.BlobID[:2], run.BlobID)
	if _, err := os.Stat(blobPath); err != nil {
		t.Errorf("report blob missing at %s: %v", blobPath, err)
	}
}

func TestSQLiteTracker_PruneDeletesUnreferencedBlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tr, err := tracker.NewSQLiteTracker(&tracker.Config{StoragePath: dir, MaxHistory: 1}, nil)
	if err != nil {
		t.Fatalf("NewSQLiteTracker() error = %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	ctx := context.Background()

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	first, err := tr.Commit(ctx, pageReport("https://example.com/a", at,
		finding(report.SeverityError, report.CategoryImages, "Image has no alt attribute", "#hero")))
	if err != nil {
		t.Fatalf("Commit(first) error = %v", err)
	}
	second, err := tr.Commit(ctx, pageReport("https://example.com/a", at.Add(time.Hour),
		finding(report.SeverityError, report.CategoryLanguage, "Document has no lang attribute", "html")))
	if err != nil {
		t.Fatalf("Commit(second) error = %v", err)
	}

	firstBlob := filepath.Join(dir, ".miru", "blobs", first.BlobID[:2], first.BlobID)
	if _, err := os.Stat(firstBlob); !os.IsNotExist(err) {
		t.Errorf("pruned run's blob still present at %s (stat err = %v)", firstBlob, err)
	}
	secondBlob := filepath.Join(dir, ".miru", "blobs", second.BlobID[:2], second.BlobID)
	if _, err := os.Stat(secondBlob); err != nil {
		t.Errorf("surviving run's blob missing: %v", err)
	}
}

func TestSQLiteTracker_DiffSurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := &tracker.Config{StoragePath: dir}
	ctx := context.Background()

	tr, err := tracker.NewSQLiteTracker(cfg, nil)
	if err != nil {
		t.Fatalf("NewSQLiteTracker() error = %v", err)
	}

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	base, err := tr.Commit(ctx, pageReport("https://example.com/a", at,
		finding(report.SeverityError, report.CategoryImages, "Image has no alt attribute", "#hero")))
	if err != nil {
		t.Fatalf("Commit(base) error = %v", err)
	}
	head, err := tr.Commit(ctx, pageReport("https://example.com/a", at.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Commit(head) error = %v", err)
	}

	want, err := tr.DiffRuns(ctx, base.ID, head.ID)
	if err != nil {
		t.Fatalf("DiffRuns() error = %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := tracker.NewSQLiteTracker(cfg, nil)
	if err != nil {
		t.Fatalf("NewSQLiteTracker(reopen) error = %v", err)
	}
	t.Cleanup(func() { reopened.Close() })

	got, err := reopened.DiffRuns(ctx, base.ID, head.ID)
	if err != nil {
		t.Fatalf("DiffRuns() after reopen error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiffRuns() after reopen = %+v, want the cached diff %+v", got, want)
	}
}
