package beam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nexushq/nexus/pkg/observability"
)

// newBeamServer fakes the token endpoints plus the workspace API.
func newBeamServer(t *testing.T, api http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	exchanges := &atomic.Int32{}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		n := exchanges.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  fmt.Sprintf("tok-%d", n),
			"refresh_token": fmt.Sprintf("ref-%d", n),
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("/v1/workspaces/", api)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewWithBaseURL(srv.URL, "beam-key", "ws1"), exchanges
}

func TestListTasksScopedToWorkspace(t *testing.T) {
	c, exchanges := newBeamServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/workspaces/ws1/tasks" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want the exchanged token", got)
		}
		if got := r.URL.Query().Get("status"); got != "pending" {
			t.Errorf("status = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"tasks": []any{}})
	})

	if _, err := c.ListTasks(context.Background(), "pending", 0); err != nil {
		t.Fatal(err)
	}
	// Follow-up calls reuse the cached token.
	if _, err := c.ListTasks(context.Background(), "pending", 0); err != nil {
		t.Fatal(err)
	}
	if exchanges.Load() != 1 {
		t.Errorf("exchanges = %d, want 1", exchanges.Load())
	}
}

func TestCreateTask(t *testing.T) {
	c, _ := newBeamServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["agentId"] != "agent-7" || body["taskQuery"] != "summarize inbox" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "task-1", "status": "pending"})
	})

	resp, err := c.CreateTask(context.Background(), "agent-7", "summarize inbox")
	if err != nil {
		t.Fatal(err)
	}
	if resp["id"] != "task-1" {
		t.Errorf("resp = %v", resp)
	}
}

func TestRunAgentStreamsEvents(t *testing.T) {
	c, _ := newBeamServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/workspaces/ws1/agents/agent-7/runs" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"step\":1}\n\n")
		fmt.Fprint(w, ": keepalive comment, ignored\n")
		fmt.Fprint(w, "data: {\"step\":2}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"step\":99}\n\n")
	})

	var events []string
	err := c.RunAgent(context.Background(), "agent-7", "do the thing", func(data string) {
		events = append(events, data)
	})
	if err != nil {
		t.Fatalf("RunAgent() error: %v", err)
	}
	// Nothing after the [DONE] sentinel is delivered.
	if len(events) != 2 || !strings.Contains(events[0], `"step":1`) || !strings.Contains(events[1], `"step":2`) {
		t.Errorf("events = %v", events)
	}
}

type recordingHooks struct {
	requests  atomic.Int32
	responses atomic.Int32
}

func (h *recordingHooks) OnRequest(_ context.Context, _, _, _, _ string) { h.requests.Add(1) }

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _, _ string, _ int, _ time.Duration) {
	h.responses.Add(1)
}

func (h *recordingHooks) OnRetry(context.Context, string, int, time.Duration) {}

func (h *recordingHooks) OnError(context.Context, string, string, string, string, error) {}

func TestRunAgentEmitsHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(func() { observability.SetHTTPHooks(observability.NoopHTTPHooks{}) })

	c, _ := newBeamServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	if err := c.RunAgent(context.Background(), "agent-7", "hello", func(string) {}); err != nil {
		t.Fatalf("RunAgent() error: %v", err)
	}
	if hooks.requests.Load() == 0 {
		t.Error("streamed run emitted no OnRequest event")
	}
	if hooks.responses.Load() == 0 {
		t.Error("streamed run emitted no OnResponse event")
	}
}

func TestRunAgentRejectedRun(t *testing.T) {
	c, _ := newBeamServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unknown agent"}`, http.StatusBadRequest)
	})

	err := c.RunAgent(context.Background(), "ghost", "hello", func(string) {
		t.Error("onEvent invoked for a rejected run")
	})
	if err == nil {
		t.Fatal("RunAgent() succeeded, want rejection error")
	}
}
