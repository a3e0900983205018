package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	nxerrors "github.com/nexushq/nexus/pkg/errors"
	"github.com/nexushq/nexus/pkg/httputil"
	"github.com/nexushq/nexus/pkg/observability"
)

// Client provides shared HTTP functionality for all integration clients:
// credential injection, rate-limit-aware retry, response caching, and the
// three-tier error mapping (config / transient / permanent).
type Client struct {
	http    *http.Client
	baseURL string
	auth    Auth
	backoff httputil.Backoff
	cache   *httputil.Cache
	headers map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithBackoff overrides the retry policy.
func WithBackoff(b httputil.Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

// WithCache attaches a response cache. GET responses are stored under a
// key derived from the endpoint and query parameters and served from disk
// until their TTL lapses.
func WithCache(cache *httputil.Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithHeaders sets default headers applied to every request
// (e.g. Notion-Version).
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) { c.headers = headers }
}

// WithHTTPClient replaces the underlying transport. Tests point this at an
// httptest server.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithBaseURL overrides the integration's API root. Tests point this at an
// httptest server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// NewClient creates a Client for one integration's base URL.
func NewClient(baseURL string, auth Auth, opts ...Option) *Client {
	c := &Client{
		http:    NewHTTPClient(),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		auth:    auth,
		backoff: httputil.DefaultBackoff(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the integration's API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Execute issues an authenticated request and returns the parsed JSON body.
//
// Transient failures (429, 5xx, timeouts) are absorbed by the retry policy;
// other 4xx responses fail immediately with a typed error carrying status and
// payload. A 2xx response with an empty or non-JSON body, and any 204, yields
// the synthetic {"status": "success"}. A top-level JSON array is returned
// wrapped as {"data": [...]}. When a cache is attached, fresh GET responses
// are served from disk without touching the network.
func (c *Client) Execute(ctx context.Context, method, endpoint string, params map[string]string, body any) (map[string]any, error) {
	raw, err := c.do(ctx, method, endpoint, params, body)
	if err != nil {
		return nil, err
	}
	return decodeBody(raw), nil
}

// Do issues a request like [Client.Execute] but decodes the response into v.
// A nil v discards the body. Synthetic success bodies are not produced; an
// empty 2xx body simply leaves v unchanged.
func (c *Client) Do(ctx context.Context, method, endpoint string, params map[string]string, body any, v any) error {
	raw, err := c.do(ctx, method, endpoint, params, body)
	if err != nil {
		return err
	}
	if v == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (c *Client) do(ctx context.Context, method, endpoint string, params map[string]string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, nxerrors.Wrap(nxerrors.ErrCodeInvalidInput, err, "encoding request body")
		}
	}

	// GET responses are served from the file cache when one is attached;
	// mutating methods always go to the network.
	cacheKey := ""
	if c.cache != nil && method == http.MethodGet {
		cacheKey = requestKey(endpoint, params)
		var cached json.RawMessage
		if ok, _ := c.cache.Get(cacheKey, &cached); ok {
			observability.Cache().OnCacheHit(ctx, cacheKey)
			return cached, nil
		}
		observability.Cache().OnCacheMiss(ctx, cacheKey)
	}

	reqID := uuid.NewString()
	backoff := c.backoff
	backoff.OnRetry = func(attempt int, delay time.Duration) {
		observability.HTTP().OnRetry(ctx, reqID, attempt, delay)
		if c.backoff.OnRetry != nil {
			c.backoff.OnRetry(attempt, delay)
		}
	}

	var result []byte
	err := httputil.Retry(ctx, backoff, func() error {
		raw, err := c.attempt(ctx, reqID, method, endpoint, params, payload)
		if err != nil {
			return err
		}
		result = raw
		return nil
	})
	if err != nil {
		return nil, normalizeError(err, endpoint)
	}

	if cacheKey != "" && len(result) > 0 {
		if err := c.cache.Set(cacheKey, json.RawMessage(result)); err == nil {
			observability.Cache().OnCacheSet(ctx, cacheKey)
		}
	}
	return result, nil
}

// requestKey builds the cache key for a GET request. Query parameters are
// encoded in sorted order so equivalent requests share an entry.
func requestKey(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return endpoint + "?" + q.Encode()
}

// attempt performs a single request and maps the outcome onto the retry
// taxonomy: nil, *RetryableError, *RateLimitError, or a permanent error.
func (c *Client) attempt(ctx context.Context, reqID, method, endpoint string, params map[string]string, payload []byte) ([]byte, error) {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, nxerrors.Wrap(nxerrors.ErrCodeInvalidInput, err, "building request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.auth != nil {
		if err := c.auth.Apply(ctx, req); err != nil {
			return nil, err
		}
	}

	observability.HTTP().OnRequest(ctx, reqID, method, req.URL.Host, endpoint)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, reqID, method, req.URL.Host, endpoint, err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &httputil.RetryableError{Err: nxerrors.Wrap(nxerrors.ErrCodeNetwork, err, "%s %s", method, endpoint)}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, reqID, method, req.URL.Host, endpoint, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if resp.StatusCode == http.StatusNoContent {
			return nil, nil
		}
		return io.ReadAll(resp.Body)

	case resp.StatusCode == http.StatusTooManyRequests:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &httputil.RateLimitError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        &nxerrors.APIError{StatusCode: resp.StatusCode, Body: string(raw), Endpoint: endpoint},
		}

	case resp.StatusCode >= 500:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &httputil.RetryableError{
			Err: &nxerrors.APIError{StatusCode: resp.StatusCode, Body: string(raw), Endpoint: endpoint},
		}

	default:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &nxerrors.APIError{StatusCode: resp.StatusCode, Body: string(raw), Endpoint: endpoint}
		code := nxerrors.ErrCodeAPI
		switch resp.StatusCode {
		case http.StatusNotFound:
			code = nxerrors.ErrCodeNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			code = nxerrors.ErrCodeUnauthorized
		case http.StatusConflict:
			code = nxerrors.ErrCodeConflict
		}
		return nil, nxerrors.Wrap(code, apiErr, "%s %s failed with status %d", method, endpoint, resp.StatusCode)
	}
}

// normalizeError converts exhausted-retry markers into coded errors so
// callers never see the retry plumbing types at the top of the chain.
func normalizeError(err error, endpoint string) error {
	var rle *httputil.RateLimitError
	if errors.As(err, &rle) {
		return nxerrors.Wrap(nxerrors.ErrCodeRateLimited, rle.Err, "rate limited on %s after retries", endpoint)
	}
	var re *httputil.RetryableError
	if errors.As(err, &re) {
		if nxerrors.StatusOf(re.Err) >= 500 {
			return nxerrors.Wrap(nxerrors.ErrCodeAPI, re.Err, "server error on %s after retries", endpoint)
		}
		return nxerrors.Wrap(nxerrors.ErrCodeNetwork, re.Err, "request to %s failed after retries", endpoint)
	}
	return err
}

// parseRetryAfter reads a Retry-After header value in seconds.
// Malformed or absent values yield 0, falling back to exponential backoff.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// decodeBody parses a response body per the Execute contract.
func decodeBody(raw []byte) map[string]any {
	success := map[string]any{"status": "success"}
	if len(bytes.TrimSpace(raw)) == 0 {
		return success
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return success
	}
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		return map[string]any{"data": t}
	default:
		return map[string]any{"data": t}
	}
}
