package app

import (
	"fmt"

	"github.com/raysh454/miru/internal/audit"
	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/snapshot"
	"github.com/raysh454/miru/internal/tracker"
	"github.com/raysh454/miru/internal/webclient"
)

// Components bundles the capture, audit, crawl and history services shared
// by every job in the process.
type Components struct {
	Source    snapshot.Source
	Auditor   *audit.Auditor
	WebClient webclient.WebClient
	Tracker   tracker.Tracker
}

// NewComponents builds the shared services from cfg. History goes to SQLite
// when cfg.Tracker.StoragePath is set and to an in-memory tracker otherwise.
func NewComponents(cfg *Config, logger logging.Logger) (*Components, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	src, err := snapshot.NewSource(&cfg.Snapshot, logger)
	if err != nil {
		return nil, fmt.Errorf("new snapshot source: %w", err)
	}

	wc, err := webclient.NewNetHTTPClient(&cfg.WebClient, logger, nil)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("new webclient: %w", err)
	}

	var tr tracker.Tracker
	if cfg.Tracker.StoragePath != "" {
		tr, err = tracker.NewSQLiteTracker(&cfg.Tracker, logger)
		if err != nil {
			_ = src.Close()
			_ = wc.Close()
			return nil, fmt.Errorf("new tracker: %w", err)
		}
	} else {
		tr = tracker.NewMemoryTracker(&cfg.Tracker, logger)
	}

	return &Components{
		Source:    src,
		Auditor:   audit.New(&cfg.Audit, logger),
		WebClient: wc,
		Tracker:   tr,
	}, nil
}

// Close releases every held resource. Any in-flight capture or commit will
// be interrupted.
func (c *Components) Close() error {
	var firstErr error
	if c.Source != nil {
		if err := c.Source.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close snapshot source: %w", err)
		}
	}
	if c.WebClient != nil {
		if err := c.WebClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close webclient: %w", err)
		}
	}
	if c.Tracker != nil {
		if err := c.Tracker.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close tracker: %w", err)
		}
	}
	return firstErr
}
