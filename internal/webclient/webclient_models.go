package webclient

import (
	"net/http"
	"strings"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// ContentType returns the response Content-Type header, media type only.
func (r *Response) ContentType() string {
	if r == nil || r.Headers == nil {
		return ""
	}
	ct := r.Headers.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}
