package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	nxerrors "github.com/nexushq/nexus/pkg/errors"
)

func TestHTTPClientWithoutCredentialsFile(t *testing.T) {
	a := NewAuthenticator(t.TempDir())

	_, err := a.HTTPClient(context.Background())
	if err == nil {
		t.Fatal("HTTPClient() succeeded with no credentials.json")
	}
	if nxerrors.GetCode(err) != nxerrors.ErrCodeMissingCredential {
		t.Errorf("error code = %v, want MISSING_CREDENTIAL", nxerrors.GetCode(err))
	}
	if nxerrors.Hint(err) == "" {
		t.Error("missing-credential error carries no hint")
	}
}

func TestHTTPClientWithoutStoredToken(t *testing.T) {
	dir := t.TempDir()
	creds := `{"installed":{"client_id":"id","client_secret":"secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	if err := os.WriteFile(filepath.Join(dir, credentialsFile), []byte(creds), 0o600); err != nil {
		t.Fatal(err)
	}

	a := NewAuthenticator(dir)
	_, err := a.HTTPClient(context.Background())
	if err == nil {
		t.Fatal("HTTPClient() succeeded with no stored token")
	}
	if nxerrors.GetCode(err) != nxerrors.ErrCodeMissingCredential {
		t.Errorf("error code = %v, want MISSING_CREDENTIAL", nxerrors.GetCode(err))
	}
}

func TestTokenRoundTrip(t *testing.T) {
	a := NewAuthenticator(t.TempDir())

	in := &oauth2.Token{
		AccessToken:  "at",
		RefreshToken: "rt",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}
	if err := a.saveToken(in); err != nil {
		t.Fatalf("saveToken() error: %v", err)
	}

	info, err := os.Stat(a.tokenPath())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	out, err := a.loadToken()
	if err != nil {
		t.Fatalf("loadToken() error: %v", err)
	}
	if out.AccessToken != "at" || out.RefreshToken != "rt" {
		t.Errorf("loadToken() = %+v", out)
	}
}
