// Package beam wraps the Beam agent platform API for the Nexus workspace.
//
// Beam uses a two-step credential flow: the workspace API key is exchanged
// for a short-lived access token which is cached and transparently refreshed
// before each call. See [integrations.ExchangeTokenAuth].
package beam

import (
	"context"
	"fmt"

	"github.com/nexushq/nexus/pkg/integrations"
)

const defaultBaseURL = "https://api.beam.ai"

// Client provides access to Beam tasks and agent runs, scoped to one
// workspace.
type Client struct {
	*integrations.Client
	workspaceID string
	baseURL     string
	auth        *integrations.ExchangeTokenAuth
}

// New creates a Beam client for the given workspace. The API key is not
// used directly on requests; it is exchanged for an access token on first
// use.
func New(apiKey, workspaceID string, opts ...integrations.Option) *Client {
	return NewWithBaseURL(defaultBaseURL, apiKey, workspaceID, opts...)
}

// NewWithBaseURL is like [New] against a non-default API root. Tests point
// this at an httptest server.
func NewWithBaseURL(baseURL, apiKey, workspaceID string, opts ...integrations.Option) *Client {
	auth := integrations.NewExchangeTokenAuth(
		apiKey,
		baseURL+"/v1/auth/token",
		baseURL+"/v1/auth/token/refresh",
	)
	return &Client{
		Client:      integrations.NewClient(baseURL, auth, opts...),
		workspaceID: workspaceID,
		baseURL:     baseURL,
		auth:        auth,
	}
}

// WorkspaceID returns the workspace this client is scoped to.
func (c *Client) WorkspaceID() string { return c.workspaceID }

// ListTasks returns tasks in the workspace, optionally filtered by status
// (e.g. "pending", "completed"; empty for all).
func (c *Client) ListTasks(ctx context.Context, status string, limit int) (map[string]any, error) {
	params := map[string]string{}
	if status != "" {
		params["status"] = status
	}
	if limit > 0 {
		params["limit"] = fmt.Sprintf("%d", limit)
	}
	return c.Execute(ctx, "GET", c.workspacePath("/tasks"), params, nil)
}

// GetTask fetches one task by ID.
func (c *Client) GetTask(ctx context.Context, taskID string) (map[string]any, error) {
	return c.Execute(ctx, "GET", c.workspacePath("/tasks/"+taskID), nil, nil)
}

// CreateTask submits a task to an agent. query is the free-form task
// instruction Beam calls taskQuery.
func (c *Client) CreateTask(ctx context.Context, agentID, query string) (map[string]any, error) {
	return c.Execute(ctx, "POST", c.workspacePath("/tasks"), nil, map[string]any{
		"agentId":   agentID,
		"taskQuery": query,
	})
}

func (c *Client) workspacePath(suffix string) string {
	return "/v1/workspaces/" + c.workspaceID + suffix
}
