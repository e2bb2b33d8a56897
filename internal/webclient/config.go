package webclient

import "time"

// Config controls the net/http backed client.
type Config struct {
	// Timeout bounds one whole request including body read.
	Timeout time.Duration

	// MaxRedirects caps redirect following. Zero means the default of 10.
	MaxRedirects int

	// UserAgent is sent when the request does not set its own.
	UserAgent string
}

// DefaultConfig returns the defaults used by the bundled binaries.
func DefaultConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		MaxRedirects: 10,
		UserAgent:    "miru/0.1 (+https://github.com/raysh454/miru)",
	}
}

func (c *Config) withDefaults() *Config {
	out := *DefaultConfig()
	if c == nil {
		return &out
	}
	if c.Timeout > 0 {
		out.Timeout = c.Timeout
	}
	if c.MaxRedirects > 0 {
		out.MaxRedirects = c.MaxRedirects
	}
	if c.UserAgent != "" {
		out.UserAgent = c.UserAgent
	}
	return &out
}
