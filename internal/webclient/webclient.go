// Package webclient is the plain-HTTP fetch layer used by the static
// snapshot source and the site spider. Browser-driven capture lives in the
// snapshot package; this client never executes scripts.
package webclient

import "context"

// WebClient executes HTTP requests.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience for simple GET requests.
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}
