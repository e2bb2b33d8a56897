package snapshot

import "time"

// Kind names a snapshot source backend.
type Kind string

const (
	// SourceChromedp captures through a headless browser.
	SourceChromedp Kind = "chromedp"

	// SourceStatic fetches HTML over plain HTTP and approximates computed
	// style and geometry. No browser required.
	SourceStatic Kind = "static"
)

// Config controls snapshot capture.
type Config struct {
	// Source selects the backend by name.
	Source Kind

	// ViewportWidth/ViewportHeight in CSS pixels. The chromedp source sizes
	// the browser window; the static source synthesizes boxes within these.
	ViewportWidth  int
	ViewportHeight int

	// Headless controls the browser mode of the chromedp source.
	Headless bool

	// IdleAfter is how long the network must stay quiet before the chromedp
	// source considers the page loaded.
	IdleAfter time.Duration

	// CaptureTimeout bounds one whole capture, navigation included.
	CaptureTimeout time.Duration

	// FetchTimeout bounds the static source's HTTP fetch.
	FetchTimeout time.Duration

	// MaxTextLength and MaxMarkupLength cap the per-element text and markup
	// carried in the snapshot.
	MaxTextLength   int
	MaxMarkupLength int
}

// DefaultConfig returns the defaults used by the bundled binaries.
func DefaultConfig() *Config {
	return &Config{
		Source:          SourceChromedp,
		ViewportWidth:   1280,
		ViewportHeight:  800,
		Headless:        true,
		IdleAfter:       2 * time.Second,
		CaptureTimeout:  45 * time.Second,
		FetchTimeout:    30 * time.Second,
		MaxTextLength:   200,
		MaxMarkupLength: 200,
	}
}

func (c *Config) withDefaults() *Config {
	out := *DefaultConfig()
	if c == nil {
		return &out
	}
	out = *c
	if out.ViewportWidth <= 0 {
		out.ViewportWidth = 1280
	}
	if out.ViewportHeight <= 0 {
		out.ViewportHeight = 800
	}
	if out.IdleAfter <= 0 {
		out.IdleAfter = 2 * time.Second
	}
	if out.CaptureTimeout <= 0 {
		out.CaptureTimeout = 45 * time.Second
	}
	if out.FetchTimeout <= 0 {
		out.FetchTimeout = 30 * time.Second
	}
	if out.MaxTextLength <= 0 {
		out.MaxTextLength = 200
	}
	if out.MaxMarkupLength <= 0 {
		out.MaxMarkupLength = 200
	}
	return &out
}
