package integrations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	nxerrors "github.com/nexushq/nexus/pkg/errors"
	"github.com/nexushq/nexus/pkg/httputil"
)

func testBackoff(slept *[]time.Duration) httputil.Backoff {
	return httputil.Backoff{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Sleep:      func(d time.Duration) { *slept = append(*slept, d) },
	}
}

func TestExecuteParsesJSONObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		w.Write([]byte(`{"ok": true, "channel": "C123"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, BearerAuth("tok-1"))
	got, err := c.Execute(context.Background(), http.MethodGet, "/test", nil, nil)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got["ok"] != true || got["channel"] != "C123" {
		t.Errorf("Execute() = %v", got)
	}
}

func TestExecuteEmptyBodyYieldsSyntheticSuccess(t *testing.T) {
	for name, handler := range map[string]http.HandlerFunc{
		"204":      func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) },
		"empty":    func(w http.ResponseWriter, _ *http.Request) {},
		"non-json": func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("OK")) },
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			c := NewClient(srv.URL, nil)
			got, err := c.Execute(context.Background(), http.MethodDelete, "/thing", nil, nil)
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if got["status"] != "success" {
				t.Errorf("Execute() = %v, want synthetic success", got)
			}
		})
	}
}

func TestExecuteWrapsTopLevelArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"id": "1"}, {"id": "2"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	got, err := c.Execute(context.Background(), http.MethodGet, "/list", nil, nil)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	data, ok := got["data"].([]any)
	if !ok || len(data) != 2 {
		t.Errorf(`Execute() = %v, want {"data": [2 items]}`, got)
	}
}

func TestExecuteRetriesRateLimitWithRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	var slept []time.Duration
	c := NewClient(srv.URL, nil, WithBackoff(testBackoff(&slept)))
	got, err := c.Execute(context.Background(), http.MethodGet, "/limited", nil, nil)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got["ok"] != true {
		t.Errorf("Execute() = %v", got)
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2", calls.Load())
	}
	// The Retry-After value wins over the exponential schedule.
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Errorf("slept = %v, want exactly [2s]", slept)
	}
}

func TestExecuteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	var slept []time.Duration
	c := NewClient(srv.URL, nil, WithBackoff(testBackoff(&slept)))
	if _, err := c.Execute(context.Background(), http.MethodGet, "/flaky", nil, nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
	if len(slept) != 2 {
		t.Errorf("sleeps = %d, want 2", len(slept))
	}
}

func TestExecuteExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var slept []time.Duration
	c := NewClient(srv.URL, nil, WithBackoff(testBackoff(&slept)))
	_, err := c.Execute(context.Background(), http.MethodGet, "/limited", nil, nil)
	if err == nil {
		t.Fatal("Execute() succeeded, want rate limit error")
	}
	if nxerrors.GetCode(err) != nxerrors.ErrCodeRateLimited {
		t.Errorf("error code = %v, want RATE_LIMITED", nxerrors.GetCode(err))
	}
	// Initial attempt plus MaxRetries, then the error surfaces.
	if calls.Load() != 4 {
		t.Errorf("server saw %d calls, want 4", calls.Load())
	}
}

func TestExecuteClientErrorsFailImmediately(t *testing.T) {
	tests := []struct {
		status int
		code   nxerrors.Code
	}{
		{http.StatusBadRequest, nxerrors.ErrCodeAPI},
		{http.StatusUnauthorized, nxerrors.ErrCodeUnauthorized},
		{http.StatusForbidden, nxerrors.ErrCodeUnauthorized},
		{http.StatusNotFound, nxerrors.ErrCodeNotFound},
		{http.StatusConflict, nxerrors.ErrCodeConflict},
	}
	for _, tt := range tests {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			http.Error(w, "nope", tt.status)
		}))

		var slept []time.Duration
		c := NewClient(srv.URL, nil, WithBackoff(testBackoff(&slept)))
		_, err := c.Execute(context.Background(), http.MethodGet, "/denied", nil, nil)
		srv.Close()

		if err == nil {
			t.Fatalf("status %d: Execute() succeeded, want error", tt.status)
		}
		if got := nxerrors.GetCode(err); got != tt.code {
			t.Errorf("status %d: error code = %v, want %v", tt.status, got, tt.code)
		}
		if calls.Load() != 1 {
			t.Errorf("status %d: server saw %d calls, want 1 (no retries)", tt.status, calls.Load())
		}
		if got := nxerrors.StatusOf(err); got != tt.status {
			t.Errorf("StatusOf = %d, want %d", got, tt.status)
		}
		if len(slept) != 0 {
			t.Errorf("status %d: slept %v, want no sleeps", tt.status, slept)
		}
	}
}

func TestExecuteQueryParamsAndDefaultHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("limit = %q, want 50", got)
		}
		if got := r.Header.Get("Notion-Version"); got != "2022-06-28" {
			t.Errorf("Notion-Version = %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, WithHeaders(map[string]string{"Notion-Version": "2022-06-28"}))
	if _, err := c.Execute(context.Background(), http.MethodGet, "/search", map[string]string{"limit": "50"}, nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
}

func TestDoDecodesTypedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"bases": [{"id": "app1", "name": "CRM"}]}`))
	}))
	defer srv.Close()

	var out struct {
		Bases []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"bases"`
	}
	c := NewClient(srv.URL, nil)
	if err := c.Do(context.Background(), http.MethodGet, "/meta/bases", nil, nil, &out); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if len(out.Bases) != 1 || out.Bases[0].ID != "app1" {
		t.Errorf("Do() decoded %+v", out)
	}
}

func TestExecuteServesRepeatGETFromCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"ok": true, "n": 1}`))
	}))
	defer srv.Close()

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(srv.URL, nil, WithCache(cache))

	params := map[string]string{"limit": "50", "types": "public_channel"}
	first, err := c.Execute(context.Background(), http.MethodGet, "/list", params, nil)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	second, err := c.Execute(context.Background(), http.MethodGet, "/list", params, nil)
	if err != nil {
		t.Fatalf("Execute() error on cached call: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("server saw %d calls, want 1 (second served from cache)", calls.Load())
	}
	if first["ok"] != true || second["ok"] != true || second["n"] != 1.0 {
		t.Errorf("responses = %v, %v", first, second)
	}

	// A different query is a different cache entry.
	if _, err := c.Execute(context.Background(), http.MethodGet, "/list", map[string]string{"limit": "10"}, nil); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2", calls.Load())
	}
}

func TestExecuteNeverCachesMutations(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(srv.URL, nil, WithCache(cache))

	for i := 0; i < 2; i++ {
		if _, err := c.Execute(context.Background(), http.MethodPost, "/create", nil, map[string]any{"x": 1}); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2 (POST must not be cached)", calls.Load())
	}
}

func TestExecuteWithoutCacheHitsNetworkEveryTime(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	for i := 0; i < 2; i++ {
		if _, err := c.Execute(context.Background(), http.MethodGet, "/list", nil, nil); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2", calls.Load())
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{" 30 ", 30 * time.Second},
		{"-1", 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
