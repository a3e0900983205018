// Package airtable wraps the Airtable API for the Nexus workspace.
package airtable

import (
	"context"
	"fmt"

	"github.com/nexushq/nexus/pkg/integrations"
)

// Client provides access to Airtable bases and records.
type Client struct {
	*integrations.Client
}

// New creates an Airtable client authenticated with a personal access token.
func New(apiKey string, opts ...integrations.Option) *Client {
	return &Client{
		Client: integrations.NewClient("https://api.airtable.com/v0", integrations.BearerAuth(apiKey), opts...),
	}
}

// Base describes one base visible to the token.
type Base struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	PermissionLevel string `json:"permissionLevel" yaml:"permission_level"`
}

// ListBases returns all bases the token can see, following Airtable's
// offset pagination.
func (c *Client) ListBases(ctx context.Context) ([]Base, error) {
	var bases []Base
	offset := ""

	for {
		params := map[string]string{}
		if offset != "" {
			params["offset"] = offset
		}

		var page struct {
			Bases  []Base `json:"bases"`
			Offset string `json:"offset"`
		}
		if err := c.Do(ctx, "GET", "/meta/bases", params, nil, &page); err != nil {
			return nil, err
		}
		bases = append(bases, page.Bases...)

		if page.Offset == "" {
			return bases, nil
		}
		offset = page.Offset
	}
}

// ListRecords returns up to limit records from a table, following offset
// pagination (limit <= 0 drains the table).
func (c *Client) ListRecords(ctx context.Context, baseID, table string, limit int) ([]map[string]any, error) {
	return integrations.Paginate(ctx, limit, nil, func(ctx context.Context, cursor string) (integrations.CursorPage, error) {
		params := map[string]string{"pageSize": "100"}
		if cursor != "" {
			params["offset"] = cursor
		}
		resp, err := c.Execute(ctx, "GET", fmt.Sprintf("/%s/%s", baseID, table), params, nil)
		if err != nil {
			return integrations.CursorPage{}, err
		}

		var items []map[string]any
		if records, ok := resp["records"].([]any); ok {
			for _, r := range records {
				if m, ok := r.(map[string]any); ok {
					items = append(items, m)
				}
			}
		}
		next, _ := resp["offset"].(string)
		return integrations.CursorPage{Items: items, NextCursor: next}, nil
	})
}

// CreateRecord creates one record with the given fields.
func (c *Client) CreateRecord(ctx context.Context, baseID, table string, fields map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "POST", fmt.Sprintf("/%s/%s", baseID, table), nil, map[string]any{
		"fields": fields,
	})
}

// UpdateRecord patches fields on an existing record.
func (c *Client) UpdateRecord(ctx context.Context, baseID, table, recordID string, fields map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "PATCH", fmt.Sprintf("/%s/%s/%s", baseID, table, recordID), nil, map[string]any{
		"fields": fields,
	})
}
