package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nexushq/nexus/pkg/integrations"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	slept := &[]time.Duration{}
	c := New("xoxp-test", integrations.WithBaseURL(srv.URL))
	c.sleep = func(d time.Duration) { *slept = append(*slept, d) }
	return c, slept
}

func TestListChannelsFollowsCursor(t *testing.T) {
	pages := map[string]map[string]any{
		"": {
			"ok":                true,
			"channels":          []map[string]any{{"id": "C1", "name": "general"}},
			"response_metadata": map[string]string{"next_cursor": "a"},
		},
		"a": {
			"ok":                true,
			"channels":          []map[string]any{{"id": "C2", "name": "random"}},
			"response_metadata": map[string]string{"next_cursor": "b"},
		},
		"b": {
			"ok":                true,
			"channels":          []map[string]any{{"id": "C3", "name": "eng"}},
			"response_metadata": map[string]string{"next_cursor": ""},
		},
	}

	var cursors []string
	c, slept := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations.list" {
			t.Errorf("path = %s", r.URL.Path)
		}
		cursor := r.URL.Query().Get("cursor")
		cursors = append(cursors, cursor)
		json.NewEncoder(w).Encode(pages[cursor])
	}))

	channels, err := c.ListChannels(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListChannels() error: %v", err)
	}
	if len(channels) != 3 {
		t.Errorf("channels = %d, want 3", len(channels))
	}
	if len(cursors) != 3 || cursors[1] != "a" || cursors[2] != "b" {
		t.Errorf("cursors = %v, want ['', a, b]", cursors)
	}
	if len(*slept) != 2 {
		t.Errorf("inter-page sleeps = %d, want 2", len(*slept))
	}
}

func TestListChannelsHonorsLimit(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok":                true,
			"channels":          []map[string]any{{"id": "C1"}, {"id": "C2"}},
			"response_metadata": map[string]string{"next_cursor": "always-more"},
		})
	}))

	channels, err := c.ListChannels(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(channels) != 3 {
		t.Errorf("channels = %d, want limit of 3", len(channels))
	}
}

func TestListMembersWrapsScalars(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("channel"); got != "C1" {
			t.Errorf("channel = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ok":      true,
			"members": []string{"U1", "U2"},
		})
	}))

	members, err := c.ListMembers(context.Background(), "C1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 || members[0]["id"] != "U1" {
		t.Errorf("members = %v", members)
	}
}

func TestPostMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat.postMessage" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["channel"] != "C1" || body["text"] != "hello" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "ts": "1700000000.000100"})
	}))

	resp, err := c.PostMessage(context.Background(), "C1", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if resp["ok"] != true {
		t.Errorf("resp = %v", resp)
	}
}

func TestHistory(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok":       true,
			"messages": []map[string]any{{"text": "hi", "user": "U1", "ts": "1.0"}},
		})
	}))

	msgs, err := c.History(context.Background(), "C1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0]["text"] != "hi" {
		t.Errorf("msgs = %v", msgs)
	}
}
