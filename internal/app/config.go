package app

import (
	"time"

	"github.com/raysh454/miru/internal/audit"
	"github.com/raysh454/miru/internal/enumerator"
	"github.com/raysh454/miru/internal/runner"
	"github.com/raysh454/miru/internal/snapshot"
	"github.com/raysh454/miru/internal/tracker"
	"github.com/raysh454/miru/internal/webclient"
)

// Config aggregates the per-package configuration of everything the
// application wires together. The zero value of each section is filled in by
// the owning package; DefaultConfig returns the composition of all their
// defaults.
type Config struct {
	// Snapshot controls page capture (source backend, viewport, timeouts).
	Snapshot snapshot.Config

	// Audit bounds a single audit run.
	Audit audit.Config

	// WebClient configures the HTTP client used by the crawler and the
	// static snapshot source.
	WebClient webclient.Config

	// Tracker configures audit history. An empty StoragePath keeps history
	// in memory for the lifetime of the process.
	Tracker tracker.Config

	// Enumerator bounds site crawls.
	Enumerator enumerator.Config

	// Runner bounds site-audit concurrency.
	Runner runner.Config

	// JobRetentionTime is how long finished jobs stay listable. Zero or
	// negative keeps them forever.
	JobRetentionTime time.Duration
}

// DefaultConfig returns a Config composed from every package's defaults.
func DefaultConfig() *Config {
	return &Config{
		Snapshot:         *snapshot.DefaultConfig(),
		Audit:            *audit.DefaultConfig(),
		WebClient:        *webclient.DefaultConfig(),
		Tracker:          *tracker.DefaultConfig(),
		Enumerator:       *enumerator.DefaultConfig(),
		Runner:           *runner.DefaultConfig(),
		JobRetentionTime: time.Hour,
	}
}
