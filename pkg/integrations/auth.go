package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	nxerrors "github.com/nexushq/nexus/pkg/errors"
	"github.com/nexushq/nexus/pkg/httputil"
)

// Auth injects credentials into an outgoing request. Implementations must be
// cheap for the common case; [ExchangeTokenAuth] may perform its own network
// round-trip when its cached token has expired.
type Auth interface {
	Apply(ctx context.Context, req *http.Request) error
}

type bearerAuth struct{ token string }

// BearerAuth authenticates with "Authorization: Bearer <token>".
// Used by Slack, HubSpot, Airtable, and Notion.
func BearerAuth(token string) Auth { return bearerAuth{token: token} }

func (a bearerAuth) Apply(_ context.Context, req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+a.token)
	return nil
}

type headerAuth struct{ name, key string }

// HeaderAuth authenticates with a custom header such as "X-API-KEY".
// Used by HeyReach and Fathom.
func HeaderAuth(name, key string) Auth { return headerAuth{name: name, key: key} }

func (a headerAuth) Apply(_ context.Context, req *http.Request) error {
	req.Header.Set(a.name, a.key)
	return nil
}

// defaultTokenLifetime is used when the exchange response carries no
// expires_in. Two minutes shy of the hour-long Beam token, so a token is
// always refreshed before the server would reject it.
const defaultTokenLifetime = 58 * time.Minute

// expirySkew is subtracted from server-provided lifetimes for the same reason.
const expirySkew = 2 * time.Minute

// ExchangeTokenAuth implements the Beam two-step credential flow: the
// long-lived API key is exchanged once for a short-lived access token, which
// is cached with its expiry. Before each request the cached token is checked;
// an expired token is refreshed, and a failed refresh falls back to a fresh
// exchange with the API key.
type ExchangeTokenAuth struct {
	apiKey      string
	exchangeURL string
	refreshURL  string
	http        *http.Client
	now         func() time.Time

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// NewExchangeTokenAuth creates an exchange-and-refresh auth strategy.
// exchangeURL accepts {"api_key": ...}; refreshURL accepts
// {"refresh_token": ...}. Both return access_token / refresh_token /
// expires_in JSON.
func NewExchangeTokenAuth(apiKey, exchangeURL, refreshURL string) *ExchangeTokenAuth {
	return &ExchangeTokenAuth{
		apiKey:      apiKey,
		exchangeURL: exchangeURL,
		refreshURL:  refreshURL,
		http:        NewHTTPClient(),
		now:         time.Now,
	}
}

// Apply ensures a valid access token and sets the bearer header.
func (a *ExchangeTokenAuth) Apply(ctx context.Context, req *http.Request) error {
	token, err := a.token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (a *ExchangeTokenAuth) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && a.now().Before(a.expiresAt) {
		return a.accessToken, nil
	}

	if a.accessToken != "" && a.refreshToken != "" {
		if err := a.grant(ctx, a.refreshURL, map[string]string{"refresh_token": a.refreshToken}); err == nil {
			return a.accessToken, nil
		}
		// Refresh failed; fall through to a full re-exchange.
	}

	if err := a.grant(ctx, a.exchangeURL, map[string]string{"api_key": a.apiKey}); err != nil {
		return "", err
	}
	return a.accessToken, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (a *ExchangeTokenAuth) grant(ctx context.Context, url string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return &httputil.RetryableError{Err: nxerrors.Wrap(nxerrors.ErrCodeNetwork, err, "token grant")}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode >= 500 {
			return &httputil.RetryableError{Err: nxerrors.New(nxerrors.ErrCodeNetwork, "token grant: status %d", resp.StatusCode)}
		}
		return nxerrors.New(nxerrors.ErrCodeUnauthorized, "token grant rejected (status %d): %s", resp.StatusCode, string(raw))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nxerrors.New(nxerrors.ErrCodeUnauthorized, "token grant returned no access token")
	}

	lifetime := defaultTokenLifetime
	if tok.ExpiresIn > 0 {
		lifetime = time.Duration(tok.ExpiresIn)*time.Second - expirySkew
		if lifetime < time.Minute {
			lifetime = time.Minute
		}
	}

	a.accessToken = tok.AccessToken
	a.refreshToken = tok.RefreshToken
	a.expiresAt = a.now().Add(lifetime)
	return nil
}
