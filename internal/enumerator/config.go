package enumerator

// Config bounds a crawl.
type Config struct {
	// MaxDepth is the maximum link distance from the seed. Pages at
	// MaxDepth are still included but their links are not followed.
	MaxDepth int `json:"max_depth,omitempty"`

	// MaxPages caps how many pages a crawl may discover, seed included.
	MaxPages int `json:"max_pages,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxDepth: 2,
		MaxPages: 50,
	}
}

func (c *Config) withDefaults() *Config {
	out := *DefaultConfig()
	if c == nil {
		return &out
	}
	if c.MaxDepth > 0 {
		out.MaxDepth = c.MaxDepth
	}
	if c.MaxPages > 0 {
		out.MaxPages = c.MaxPages
	}
	return &out
}
