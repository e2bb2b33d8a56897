package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/raysh454/miru/internal/logging"
)

// Source produces snapshots of live pages.
type Source interface {
	// Capture loads the page and returns its snapshot.
	Capture(ctx context.Context, url string) (*Document, error)

	Close() error
}

// SourceConstructor builds a Source from config and logger.
type SourceConstructor func(cfg *Config, logger logging.Logger) (Source, error)

var (
	mu       sync.RWMutex
	registry = map[string]SourceConstructor{}
)

// RegisterSource registers a named source constructor. Name is lower-cased
// internally; registering an existing name overwrites the previous
// constructor.
func RegisterSource(name string, ctor SourceConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

// NewSource constructs the source selected by cfg.Source. It returns an
// error if the named source has not been registered.
func NewSource(cfg *Config, logger logging.Logger) (Source, error) {
	cfg = cfg.withDefaults()
	name := strings.ToLower(strings.TrimSpace(string(cfg.Source)))
	if name == "" {
		name = string(SourceChromedp)
	}

	mu.RLock()
	ctor, ok := registry[name]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("snapshot source %q not registered: available sources=%v", name, ListSources())
	}

	src, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to construct snapshot source %q: %w", name, err)
	}
	if src == nil {
		return nil, errors.New("snapshot source constructor returned nil")
	}
	return src, nil
}

// ListSources returns the registered source names, sorted.
func ListSources() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RegisterDefaultSources registers the chromedp and static sources. Called
// from the binaries' mains before any NewSource.
func RegisterDefaultSources() {
	RegisterSource(string(SourceChromedp), func(cfg *Config, logger logging.Logger) (Source, error) {
		return NewChromedpSource(cfg, logger)
	})
	RegisterSource(string(SourceStatic), func(cfg *Config, logger logging.Logger) (Source, error) {
		return NewStaticSource(cfg, logger, nil)
	})
}
