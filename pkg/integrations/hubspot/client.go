// Package hubspot wraps the HubSpot CRM v3 API for the Nexus workspace.
package hubspot

import (
	"context"
	"errors"
	"strings"

	nxerrors "github.com/nexushq/nexus/pkg/errors"
	"github.com/nexushq/nexus/pkg/integrations"
)

// Client provides access to HubSpot CRM objects (contacts, deals, tasks).
type Client struct {
	*integrations.Client
}

// New creates a HubSpot client authenticated with a private app access token.
func New(token string, opts ...integrations.Option) *Client {
	return &Client{
		Client: integrations.NewClient("https://api.hubapi.com", integrations.BearerAuth(token), opts...),
	}
}

// GetContact fetches a contact by ID with the named properties.
func (c *Client) GetContact(ctx context.Context, contactID string, properties []string) (map[string]any, error) {
	params := map[string]string{}
	if len(properties) > 0 {
		params["properties"] = strings.Join(properties, ",")
	}
	return c.Execute(ctx, "GET", "/crm/v3/objects/contacts/"+contactID, params, nil)
}

// SearchContacts runs a CONTAINS_TOKEN search over email, firstname, and
// lastname. HubSpot caps search results at 100 per request.
func (c *Client) SearchContacts(ctx context.Context, query string, limit int) (map[string]any, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return c.Execute(ctx, "POST", "/crm/v3/objects/contacts/search", nil, map[string]any{
		"query":      query,
		"limit":      limit,
		"properties": []string{"email", "firstname", "lastname", "company", "lifecyclestage"},
	})
}

// CreateContact creates a contact from the given property map
// (e.g. {"email": ..., "firstname": ...}).
func (c *Client) CreateContact(ctx context.Context, properties map[string]string) (map[string]any, error) {
	resp, err := c.Execute(ctx, "POST", "/crm/v3/objects/contacts", nil, map[string]any{
		"properties": properties,
	})
	return resp, withConflictHint(err)
}

// UpdateContact patches properties on an existing contact.
func (c *Client) UpdateContact(ctx context.Context, contactID string, properties map[string]string) (map[string]any, error) {
	return c.Execute(ctx, "PATCH", "/crm/v3/objects/contacts/"+contactID, nil, map[string]any{
		"properties": properties,
	})
}

// CreateTask creates a CRM task. Timestamps use HubSpot's epoch-millisecond
// string convention; the caller supplies hs_timestamp ready-formatted.
func (c *Client) CreateTask(ctx context.Context, properties map[string]string) (map[string]any, error) {
	resp, err := c.Execute(ctx, "POST", "/crm/v3/objects/tasks", nil, map[string]any{
		"properties": properties,
	})
	return resp, withConflictHint(err)
}

// ListDeals pages through deals. HubSpot uses offset-style paging via the
// "after" token carried in paging.next.after.
func (c *Client) ListDeals(ctx context.Context, limit int) ([]map[string]any, error) {
	return integrations.Paginate(ctx, limit, nil, func(ctx context.Context, cursor string) (integrations.CursorPage, error) {
		params := map[string]string{
			"limit":      "100",
			"properties": "dealname,amount,dealstage,closedate",
		}
		if cursor != "" {
			params["after"] = cursor
		}
		resp, err := c.Execute(ctx, "GET", "/crm/v3/objects/deals", params, nil)
		if err != nil {
			return integrations.CursorPage{}, err
		}

		var items []map[string]any
		if results, ok := resp["results"].([]any); ok {
			for _, r := range results {
				if m, ok := r.(map[string]any); ok {
					items = append(items, m)
				}
			}
		}
		return integrations.CursorPage{Items: items, NextCursor: nextAfter(resp)}, nil
	})
}

func nextAfter(resp map[string]any) string {
	paging, _ := resp["paging"].(map[string]any)
	next, _ := paging["next"].(map[string]any)
	after, _ := next["after"].(string)
	return after
}

// withConflictHint annotates 409-style conflicts; the most common cause is
// creating a contact whose email already exists.
func withConflictHint(err error) error {
	if err == nil {
		return nil
	}
	var e *nxerrors.Error
	if errors.As(err, &e) && e.Code == nxerrors.ErrCodeConflict {
		return e.WithHint("object may already exist; search for it first")
	}
	return err
}
