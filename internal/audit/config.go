package audit

// Config bounds one audit run. The caps keep huge pages from turning the
// contrast pass into a full-page scan; candidates are taken in document
// order so the above-the-fold content is always covered first.
type Config struct {
	// MaxTextCandidates caps how many visible text-bearing elements are
	// collected for the contrast pass.
	MaxTextCandidates int

	// MaxContrastChecks caps how many of the collected candidates are
	// actually evaluated.
	MaxContrastChecks int
}

// DefaultConfig returns the caps used by the bundled binaries.
func DefaultConfig() *Config {
	return &Config{
		MaxTextCandidates: 1500,
		MaxContrastChecks: 1000,
	}
}

func (c *Config) withDefaults() *Config {
	out := *DefaultConfig()
	if c == nil {
		return &out
	}
	if c.MaxTextCandidates > 0 {
		out.MaxTextCandidates = c.MaxTextCandidates
	}
	if c.MaxContrastChecks > 0 {
		out.MaxContrastChecks = c.MaxContrastChecks
	}
	return &out
}
