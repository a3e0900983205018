// Package slack wraps the Slack Web API for the Nexus workspace.
package slack

import (
	"context"
	"time"

	"github.com/nexushq/nexus/pkg/integrations"
)

// Client provides access to the Slack Web API. List endpoints are drained
// through cursor pagination (response_metadata.next_cursor).
type Client struct {
	*integrations.Client

	// sleep overrides the inter-page courtesy delay in tests.
	sleep func(time.Duration)
}

// New creates a Slack client authenticated with a user token.
func New(token string, opts ...integrations.Option) *Client {
	return &Client{
		Client: integrations.NewClient("https://slack.com/api", integrations.BearerAuth(token), opts...),
	}
}

// Channel is a Slack conversation as returned by conversations.list.
type Channel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsPrivate  bool   `json:"is_private"`
	IsArchived bool   `json:"is_archived"`
	NumMembers int    `json:"num_members"`
	Topic      struct {
		Value string `json:"value"`
	} `json:"topic"`
}

// Message is one entry of a conversation history.
type Message struct {
	Type     string `json:"type"`
	User     string `json:"user"`
	Text     string `json:"text"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts,omitempty"`
}

// ListChannels returns up to limit channels visible to the token
// (limit <= 0 drains everything).
func (c *Client) ListChannels(ctx context.Context, limit int) ([]map[string]any, error) {
	return c.paginate(ctx, "/conversations.list", map[string]string{
		"types":            "public_channel,private_channel",
		"exclude_archived": "true",
		"limit":            "200",
	}, "channels", limit)
}

// ListMembers returns the member user IDs of a channel.
func (c *Client) ListMembers(ctx context.Context, channelID string, limit int) ([]map[string]any, error) {
	return c.paginate(ctx, "/conversations.members", map[string]string{
		"channel": channelID,
		"limit":   "200",
	}, "members", limit)
}

// History returns up to limit messages of a channel, newest first.
func (c *Client) History(ctx context.Context, channelID string, limit int) ([]map[string]any, error) {
	return c.paginate(ctx, "/conversations.history", map[string]string{
		"channel": channelID,
		"limit":   "200",
	}, "messages", limit)
}

// PostMessage posts text to a channel and returns the API response.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) (map[string]any, error) {
	return c.Execute(ctx, "POST", "/chat.postMessage", nil, map[string]any{
		"channel": channelID,
		"text":    text,
	})
}

// paginate drains a Slack list endpoint, accumulating resultKey entries and
// following response_metadata.next_cursor until empty.
func (c *Client) paginate(ctx context.Context, endpoint string, params map[string]string, resultKey string, limit int) ([]map[string]any, error) {
	return integrations.Paginate(ctx, limit, c.sleep, func(ctx context.Context, cursor string) (integrations.CursorPage, error) {
		p := make(map[string]string, len(params)+1)
		for k, v := range params {
			p[k] = v
		}
		if cursor != "" {
			p["cursor"] = cursor
		}

		resp, err := c.Execute(ctx, "GET", endpoint, p, nil)
		if err != nil {
			return integrations.CursorPage{}, err
		}
		return integrations.CursorPage{
			Items:      extractItems(resp, resultKey),
			NextCursor: nextCursor(resp),
		}, nil
	})
}

// nextCursor reads response_metadata.next_cursor, returning "" when the
// listing is exhausted.
func nextCursor(resp map[string]any) string {
	meta, _ := resp["response_metadata"].(map[string]any)
	cursor, _ := meta["next_cursor"].(string)
	return cursor
}

// extractItems lifts the named result array out of a list response.
// Scalar entries (member IDs) are wrapped as {"id": v} so every listing
// yields a uniform shape.
func extractItems(resp map[string]any, key string) []map[string]any {
	raw, _ := resp[key].([]any)
	items := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, m)
			continue
		}
		items = append(items, map[string]any{"id": entry})
	}
	return items
}
