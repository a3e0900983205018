package integrations

import (
	"net/http"
	"time"
)

const (
	// httpTimeout bounds every plain request; streaming calls use streamTimeout.
	httpTimeout   = 30 * time.Second
	streamTimeout = 300 * time.Second

	// maxErrorBody caps how much of a failed response is carried in errors.
	maxErrorBody = 2048
)

// NewHTTPClient creates an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NewStreamingHTTPClient creates an HTTP client suitable for long-lived SSE
// responses. The overall timeout is generous; callers abort via context.
func NewStreamingHTTPClient() *http.Client {
	return &http.Client{Timeout: streamTimeout}
}
