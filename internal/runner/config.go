package runner

// Config bounds a site audit run.
type Config struct {
	// MaxConcurrency is how many pages are captured and audited in
	// parallel.
	MaxConcurrency int `json:"max_concurrency,omitempty"`

	// CommitSize is how many finished reports the history writer flushes
	// to the tracker at a time.
	CommitSize int `json:"commit_size,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrency: 4,
		CommitSize:     8,
	}
}

func (c *Config) withDefaults() *Config {
	out := *DefaultConfig()
	if c == nil {
		return &out
	}
	if c.MaxConcurrency > 0 {
		out.MaxConcurrency = c.MaxConcurrency
	}
	if c.CommitSize > 0 {
		out.CommitSize = c.CommitSize
	}
	return &out
}
