// Package heyreach wraps the HeyReach outreach API for the Nexus workspace.
package heyreach

import (
	"context"

	"github.com/nexushq/nexus/pkg/integrations"
)

// Client provides access to HeyReach campaigns and leads.
// HeyReach authenticates with an X-API-KEY header.
type Client struct {
	*integrations.Client
}

// New creates a HeyReach client.
func New(apiKey string, opts ...integrations.Option) *Client {
	return &Client{
		Client: integrations.NewClient("https://api.heyreach.io/api/public", integrations.HeaderAuth("X-API-KEY", apiKey), opts...),
	}
}

// ListCampaigns returns campaigns, paged by offset/limit.
func (c *Client) ListCampaigns(ctx context.Context, limit int) (map[string]any, error) {
	if limit <= 0 {
		limit = 50
	}
	return c.Execute(ctx, "POST", "/campaign/GetAll", nil, map[string]any{
		"offset": 0,
		"limit":  limit,
	})
}

// GetCampaign fetches one campaign by ID.
func (c *Client) GetCampaign(ctx context.Context, campaignID string) (map[string]any, error) {
	return c.Execute(ctx, "GET", "/campaign/GetById", map[string]string{"campaignId": campaignID}, nil)
}

// Lead is the minimal profile HeyReach accepts when adding to a campaign.
type Lead struct {
	ProfileURL string `json:"profileUrl"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
}

// AddLeads adds LinkedIn profiles to a campaign.
func (c *Client) AddLeads(ctx context.Context, campaignID string, leads []Lead) (map[string]any, error) {
	return c.Execute(ctx, "POST", "/campaign/AddLeadsToCampaignV2", nil, map[string]any{
		"campaignId":       campaignID,
		"accountLeadPairs": leads,
	})
}

// CampaignStats returns send/reply statistics for a campaign.
func (c *Client) CampaignStats(ctx context.Context, campaignID string) (map[string]any, error) {
	return c.Execute(ctx, "POST", "/stats/GetOverallStats", nil, map[string]any{
		"campaignIds": []string{campaignID},
	})
}
