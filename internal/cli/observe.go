package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nexushq/nexus/pkg/observability"
)

// logHTTPHooks streams HTTP client events to the debug log, giving --verbose
// a per-request trace: request, response with latency, and every retry.
type logHTTPHooks struct{ logger *log.Logger }

func (h logHTTPHooks) OnRequest(_ context.Context, reqID, method, host, path string) {
	h.logger.Debug("http request", "id", reqID, "method", method, "host", host, "path", path)
}

func (h logHTTPHooks) OnResponse(_ context.Context, reqID, method, _, path string, statusCode int, duration time.Duration) {
	h.logger.Debug("http response", "id", reqID, "method", method, "path", path, "status", statusCode, "duration", duration)
}

func (h logHTTPHooks) OnRetry(_ context.Context, reqID string, attempt int, delay time.Duration) {
	h.logger.Debug("retrying request", "id", reqID, "attempt", attempt+1, "delay", delay)
}

func (h logHTTPHooks) OnError(_ context.Context, reqID, method, _, path string, err error) {
	h.logger.Debug("http transport error", "id", reqID, "method", method, "path", path, "err", err)
}

type logCacheHooks struct{ logger *log.Logger }

func (h logCacheHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", key)
}

func (h logCacheHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", key)
}

func (h logCacheHooks) OnCacheSet(_ context.Context, key string) {
	h.logger.Debug("cache set", "key", key)
}

// registerHooks installs the logging instrumentation. Called once from the
// root command's PersistentPreRun.
func (c *CLI) registerHooks() {
	observability.SetHTTPHooks(logHTTPHooks{logger: c.Logger})
	observability.SetCacheHooks(logCacheHooks{logger: c.Logger})
}
