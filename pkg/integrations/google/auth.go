// Package google provides Google Workspace access for the Nexus workspace,
// authenticated through the standard OAuth2 installed-app flow.
//
// Credentials come from a downloaded credentials.json in the workspace
// .nexus/ directory; the obtained token (access + refresh) is persisted next
// to it and refreshed automatically by the oauth2 TokenSource.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	nxerrors "github.com/nexushq/nexus/pkg/errors"
)

const (
	credentialsFile = "credentials.json"
	tokenFile       = "google-token.json"

	// callbackPort is the fixed localhost port capturing the OAuth redirect.
	// It must match an authorized redirect URI of the OAuth client.
	callbackPort = "6789"
)

// Authenticator manages the OAuth2 credential lifecycle for one workspace.
type Authenticator struct {
	configDir string
	scopes    []string
}

// NewAuthenticator creates an Authenticator reading credentials.json from
// configDir (the workspace .nexus/ directory) and persisting the token there.
func NewAuthenticator(configDir string, scopes ...string) *Authenticator {
	if len(scopes) == 0 {
		scopes = []string{calendar.CalendarEventsScope}
	}
	return &Authenticator{configDir: configDir, scopes: scopes}
}

// HTTPClient returns an authenticated *http.Client that refreshes its access
// token transparently. If no token is stored yet, ErrCodeMissingCredential is
// returned with a hint to run the login flow.
func (a *Authenticator) HTTPClient(ctx context.Context) (*http.Client, error) {
	config, err := a.oauthConfig()
	if err != nil {
		return nil, err
	}
	tok, err := a.loadToken()
	if err != nil {
		return nil, nxerrors.New(nxerrors.ErrCodeMissingCredential, "no Google token stored").
			WithHint("run 'nexus google login' to authorize")
	}

	source := config.TokenSource(ctx, tok)
	// Persist whatever the source refreshed to, keeping the file current.
	if fresh, err := source.Token(); err == nil && fresh.AccessToken != tok.AccessToken {
		_ = a.saveToken(fresh)
	}
	return oauth2.NewClient(ctx, source), nil
}

// Login runs the browser consent flow: prints the authorization URL, waits
// for the redirect on localhost, exchanges the code, and stores the token.
func (a *Authenticator) Login(ctx context.Context, printURL func(url string)) error {
	config, err := a.oauthConfig()
	if err != nil {
		return err
	}
	config.RedirectURL = "http://localhost:" + callbackPort + "/oauth2callback"

	listener, err := net.Listen("tcp", "localhost:"+callbackPort)
	if err != nil {
		return nxerrors.Wrap(nxerrors.ErrCodeConfig, err, "binding callback port %s", callbackPort)
	}
	defer listener.Close()

	state := fmt.Sprintf("nexus-%d", time.Now().UnixNano())
	printURL(config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- nxerrors.New(nxerrors.ErrCodeUnauthorized, "oauth state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errCh <- nxerrors.New(nxerrors.ErrCodeUnauthorized, "authorization denied")
			return
		}
		fmt.Fprintln(w, "Authorization received. You can close this tab.")
		codeCh <- code
	})}
	go server.Serve(listener)
	defer server.Close()

	var code string
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	case code = <-codeCh:
	}

	tok, err := config.Exchange(ctx, code)
	if err != nil {
		return nxerrors.Wrap(nxerrors.ErrCodeUnauthorized, err, "exchanging authorization code")
	}
	return a.saveToken(tok)
}

func (a *Authenticator) oauthConfig() (*oauth2.Config, error) {
	path := filepath.Join(a.configDir, credentialsFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nxerrors.New(nxerrors.ErrCodeMissingCredential, "cannot read %s", path).
			WithHint("download an OAuth client credentials.json from Google Cloud Console into %s", a.configDir)
	}
	config, err := google.ConfigFromJSON(raw, a.scopes...)
	if err != nil {
		return nil, nxerrors.Wrap(nxerrors.ErrCodeConfig, err, "parsing %s", path)
	}
	return config, nil
}

func (a *Authenticator) tokenPath() string {
	return filepath.Join(a.configDir, tokenFile)
}

func (a *Authenticator) loadToken() (*oauth2.Token, error) {
	raw, err := os.ReadFile(a.tokenPath())
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (a *Authenticator) saveToken(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(a.configDir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(a.tokenPath(), data, 0o600)
}
