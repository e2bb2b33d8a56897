package tracker

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/raysh454/miru/internal/render"
	"github.com/raysh454/miru/internal/report"
	"github.com/sergi/go-diff/diffmatchpatch"
)

//go:embed schema.sql
var schemaFS embed.FS

// applySchema applies the SQLite schema to the database and sets appropriate pragmas.
func applySchema(db *sql.DB) error {
	// Set pragmas for better performance and safety
	pragmas := []string{
		"PRAGMA journal_mode=WAL",        // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL",      // Balance between safety and performance
		"PRAGMA foreign_keys=ON",         // Enable foreign key constraints
		"PRAGMA busy_timeout=5000",       // Wait up to 5 seconds on locked database
		"PRAGMA cache_size=-64000",       // 64MB cache (negative means KB)
		"PRAGMA temp_store=MEMORY",       // Store temp tables in memory
		"PRAGMA mmap_size=268435456",     // 256MB memory-mapped I/O
		"PRAGMA auto_vacuum=INCREMENTAL", // Incremental auto-vacuum
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	// Read and execute schema
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}

	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', '1')`); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

// computeTextChunks diffs two rendered reports at the character level and
// keeps only the changed, semantically cleaned chunks.
func computeTextChunks(base, head string) []DiffChunk {
	dmp := diffmatchpatch.New()

	diffs := dmp.DiffMain(base, head, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	chunks := make([]DiffChunk, 0)
	for _, d := range diffs {
		var chunkType string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			chunkType = "added"
		case diffmatchpatch.DiffDelete:
			chunkType = "removed"
		case diffmatchpatch.DiffEqual:
			continue
		}

		// Only include non-empty chunks
		if strings.TrimSpace(d.Text) != "" {
			chunks = append(chunks, DiffChunk{
				Type:    chunkType,
				Content: d.Text,
			})
		}
	}
	return chunks
}

// findingKey identifies a finding for cross-run matching.
func findingKey(f report.Finding) string {
	return strings.Join([]string{
		string(f.Severity),
		string(f.Category),
		f.Message,
		f.Selector,
		f.ElementSnippet,
	}, "\x1f")
}

// diffFindings computes the introduced and resolved findings between two
// reports. Matching is multiset-based so duplicate findings pair off one
// by one.
func diffFindings(base, head []report.Finding) (introduced, resolved []report.Finding) {
	baseCount := make(map[string]int, len(base))
	for _, f := range base {
		baseCount[findingKey(f)]++
	}

	introduced = make([]report.Finding, 0)
	for _, f := range head {
		key := findingKey(f)
		if baseCount[key] > 0 {
			baseCount[key]--
			continue
		}
		introduced = append(introduced, f)
	}

	headCount := make(map[string]int, len(head))
	for _, f := range head {
		headCount[findingKey(f)]++
	}

	resolved = make([]report.Finding, 0)
	for _, f := range base {
		key := findingKey(f)
		if headCount[key] > 0 {
			headCount[key]--
			continue
		}
		resolved = append(resolved, f)
	}

	return introduced, resolved
}

// buildRunDiff assembles the diff of two runs of the same page. Both
// tracker implementations share it.
func buildRunDiff(baseRun, headRun *Run, baseRep, headRep *report.Report) (*RunDiff, error) {
	if baseRun.URL != headRun.URL {
		return nil, fmt.Errorf("%w: %s vs %s", ErrMismatchedRuns, baseRun.URL, headRun.URL)
	}

	introduced, resolved := diffFindings(baseRep.Findings, headRep.Findings)

	return &RunDiff{
		BaseID:      baseRun.ID,
		HeadID:      headRun.ID,
		Introduced:  introduced,
		Resolved:    resolved,
		BaseSummary: baseRun.Summary,
		HeadSummary: headRun.Summary,
		TextChunks:  computeTextChunks(render.Text(baseRep), render.Text(headRep)),
	}, nil
}
