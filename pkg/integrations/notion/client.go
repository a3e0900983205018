// Package notion wraps the Notion API for the Nexus workspace.
package notion

import (
	"context"

	"github.com/nexushq/nexus/pkg/integrations"
)

// apiVersion pins the Notion-Version header; Notion rejects unversioned
// requests.
const apiVersion = "2022-06-28"

// Client provides access to Notion databases and pages. Listings follow
// Notion's start_cursor / has_more pagination.
type Client struct {
	*integrations.Client
}

// New creates a Notion client authenticated with an internal integration key.
func New(apiKey string, opts ...integrations.Option) *Client {
	opts = append([]integrations.Option{
		integrations.WithHeaders(map[string]string{"Notion-Version": apiVersion}),
	}, opts...)
	return &Client{
		Client: integrations.NewClient("https://api.notion.com/v1", integrations.BearerAuth(apiKey), opts...),
	}
}

// QueryDatabase returns up to limit pages of a database query
// (limit <= 0 drains everything). filter may be nil.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter map[string]any, limit int) ([]map[string]any, error) {
	return integrations.Paginate(ctx, limit, nil, func(ctx context.Context, cursor string) (integrations.CursorPage, error) {
		body := map[string]any{"page_size": 100}
		if filter != nil {
			body["filter"] = filter
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		resp, err := c.Execute(ctx, "POST", "/databases/"+databaseID+"/query", nil, body)
		if err != nil {
			return integrations.CursorPage{}, err
		}
		return integrations.CursorPage{Items: results(resp), NextCursor: next(resp)}, nil
	})
}

// Search runs a workspace-wide search for pages and databases.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]map[string]any, error) {
	return integrations.Paginate(ctx, limit, nil, func(ctx context.Context, cursor string) (integrations.CursorPage, error) {
		body := map[string]any{"query": query, "page_size": 100}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		resp, err := c.Execute(ctx, "POST", "/search", nil, body)
		if err != nil {
			return integrations.CursorPage{}, err
		}
		return integrations.CursorPage{Items: results(resp), NextCursor: next(resp)}, nil
	})
}

// GetPage fetches one page by ID.
func (c *Client) GetPage(ctx context.Context, pageID string) (map[string]any, error) {
	return c.Execute(ctx, "GET", "/pages/"+pageID, nil, nil)
}

// CreatePage creates a page under the given parent with the given
// properties, both in Notion's raw block format.
func (c *Client) CreatePage(ctx context.Context, parent, properties map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "POST", "/pages", nil, map[string]any{
		"parent":     parent,
		"properties": properties,
	})
}

func results(resp map[string]any) []map[string]any {
	raw, _ := resp["results"].([]any)
	items := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

// next returns the follow-up cursor, or "" when has_more is false.
func next(resp map[string]any) string {
	if more, _ := resp["has_more"].(bool); !more {
		return ""
	}
	cursor, _ := resp["next_cursor"].(string)
	return cursor
}
