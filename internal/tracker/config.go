package tracker

// Config controls where and how much audit history the tracker keeps.
type Config struct {
	// StoragePath is the workspace directory; persistent trackers keep
	// their state under <StoragePath>/.miru. Empty means the current
	// directory.
	StoragePath string `json:"storage_path,omitempty"`

	// MaxHistory caps stored runs per canonical URL; the oldest runs and
	// their report blobs are pruned on commit. Zero or negative means
	// unlimited.
	MaxHistory int `json:"max_history,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxHistory: 100,
	}
}

func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	out := *c
	return &out
}
