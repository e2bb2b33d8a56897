// Package testutil provides shared test doubles. The dummies implement the
// production interfaces so components under test can run without real
// network or browser I/O.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/snapshot"
	"github.com/raysh454/miru/internal/webclient"
)

var (
	_ logging.Logger      = (*DummyLogger)(nil)
	_ snapshot.Source     = (*DummySource)(nil)
	_ webclient.WebClient = (*DummyWebClient)(nil)
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Debugs []string
	Infos  []string
	Warns  []string
	Errors []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── Snapshot source ───────────────────────────────────────────────────

// defaultPage carries one alt-text defect so audits of it produce findings.
const defaultPage = `<html lang="en"><head><title>t</title></head><body><img src="logo.png"><p>hello</p></body></html>`

// DummySource implements snapshot.Source by statically parsing canned HTML.
// Every URL gets HTML (or defaultPage when empty) unless PerURL overrides
// it. URLs in FailURLs error instead.
type DummySource struct {
	HTML     string
	PerURL   map[string]string
	FailURLs map[string]bool
	Delay    time.Duration

	mu       sync.Mutex
	Captured []string
}

func (d *DummySource) Capture(ctx context.Context, url string) (*snapshot.Document, error) {
	if d.Delay > 0 {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.Captured = append(d.Captured, url)
	d.mu.Unlock()

	if d.FailURLs[url] {
		return nil, fmt.Errorf("dummy capture failure for %s", url)
	}

	html := d.HTML
	if body, ok := d.PerURL[url]; ok {
		html = body
	}
	if html == "" {
		html = defaultPage
	}
	return snapshot.ParseHTML(url, []byte(html), nil)
}

func (d *DummySource) Close() error { return nil }

// CapturedURLs returns a copy of the capture log.
func (d *DummySource) CapturedURLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.Captured...)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient over an in-memory site.
// Pages maps URL to an HTML body served with status 200; unknown URLs get
// a 404. URLs in FailURLs error instead.
type DummyWebClient struct {
	Pages         map[string]string
	FailURLs      map[string]bool
	ResponseDelay time.Duration

	mu       sync.Mutex
	Requests []string
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	d.Requests = append(d.Requests, req.URL)
	d.mu.Unlock()

	if d.FailURLs[req.URL] {
		return nil, fmt.Errorf("dummy fetch failure for %s", req.URL)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "text/html; charset=utf-8")

	body, ok := d.Pages[req.URL]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	return &webclient.Response{
		Request:    req,
		Headers:    headers,
		Body:       []byte(body),
		StatusCode: status,
		FetchedAt:  time.Now().UTC(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestedURLs returns a copy of the request log.
func (d *DummyWebClient) RequestedURLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.Requests...)
}
