// Package httputil provides the retry and caching primitives shared by every
// Nexus integration client.
//
// The retry policy is rate-limit aware: transient failures (timeouts,
// connection errors, 5xx) back off exponentially with jitter, while 429
// responses honor the server's Retry-After header when present. See [Backoff]
// and [Retry].
//
// The file [Cache] stores GET responses under ~/.cache/nexus/ so repeated
// lookups (channel lists, base schemas) don't burn API quota between
// invocations.
package httputil
