// Package fathom wraps the Fathom meeting recorder API for the Nexus
// workspace.
package fathom

import (
	"context"

	"github.com/nexushq/nexus/pkg/integrations"
)

// Client provides access to Fathom meetings and transcripts.
// Fathom authenticates with an X-Api-Key header.
type Client struct {
	*integrations.Client
}

// New creates a Fathom client.
func New(apiKey string, opts ...integrations.Option) *Client {
	return &Client{
		Client: integrations.NewClient("https://api.fathom.ai/external/v1", integrations.HeaderAuth("X-Api-Key", apiKey), opts...),
	}
}

// ListMeetings returns recent meetings, following cursor pagination.
func (c *Client) ListMeetings(ctx context.Context, limit int) ([]map[string]any, error) {
	return integrations.Paginate(ctx, limit, nil, func(ctx context.Context, cursor string) (integrations.CursorPage, error) {
		params := map[string]string{}
		if cursor != "" {
			params["cursor"] = cursor
		}
		resp, err := c.Execute(ctx, "GET", "/meetings", params, nil)
		if err != nil {
			return integrations.CursorPage{}, err
		}

		var items []map[string]any
		if raw, ok := resp["items"].([]any); ok {
			for _, r := range raw {
				if m, ok := r.(map[string]any); ok {
					items = append(items, m)
				}
			}
		}
		next, _ := resp["next_cursor"].(string)
		return integrations.CursorPage{Items: items, NextCursor: next}, nil
	})
}

// Transcript bundles a meeting transcript with optional recording metadata.
type Transcript struct {
	MeetingID  string         `json:"meeting_id"`
	Transcript map[string]any `json:"transcript"`
	Recording  map[string]any `json:"recording,omitempty"`
}

// GetTranscript fetches a meeting transcript, enriched with recording
// metadata on a best-effort basis: the transcript is the deliverable, so a
// failed metadata fetch degrades gracefully instead of failing the call.
func (c *Client) GetTranscript(ctx context.Context, meetingID string) (*Transcript, error) {
	transcript, err := c.Execute(ctx, "GET", "/meetings/"+meetingID+"/transcript", nil, nil)
	if err != nil {
		return nil, err
	}

	t := &Transcript{MeetingID: meetingID, Transcript: transcript}
	if recording, err := c.Execute(ctx, "GET", "/meetings/"+meetingID, nil, nil); err == nil {
		t.Recording = recording
	}
	return t, nil
}
