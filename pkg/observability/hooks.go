// Package observability provides hooks for instrumenting HTTP and cache
// activity without coupling the integration clients to any metrics backend.
//
// Hooks default to no-ops; main registers real implementations at startup.
// Libraries only ever emit events:
//
//	observability.HTTP().OnRequest(ctx, reqID, method, host, path)
package observability

import (
	"context"
	"sync"
	"time"
)

// HTTPHooks receives events from the rate-limited HTTP client.
type HTTPHooks interface {
	// OnRequest records an outgoing request. reqID is the per-request UUID.
	OnRequest(ctx context.Context, reqID, method, host, path string)

	// OnResponse records a response, successful or not.
	OnResponse(ctx context.Context, reqID, method, host, path string, statusCode int, duration time.Duration)

	// OnRetry records a scheduled retry with the attempt index and chosen delay.
	OnRetry(ctx context.Context, reqID string, attempt int, delay time.Duration)

	// OnError records a transport failure (timeout, connection refused).
	OnError(ctx context.Context, reqID, method, host, path string, err error)
}

// CacheHooks receives events from response cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string)
}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string, string) {}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, string, int, time.Duration) {
}

func (NoopHTTPHooks) OnRetry(context.Context, string, int, time.Duration) {}

func (NoopHTTPHooks) OnError(context.Context, string, string, string, string, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string) {}

func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}

func (NoopCacheHooks) OnCacheSet(context.Context, string) {}

var (
	mu         sync.RWMutex
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
)

// SetHTTPHooks registers HTTP hooks. Call once at startup, before any client
// is constructed.
func SetHTTPHooks(h HTTPHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// SetCacheHooks registers cache hooks.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	mu.RLock()
	defer mu.RUnlock()
	return httpHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}
