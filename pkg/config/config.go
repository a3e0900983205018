// Package config loads Nexus workspace configuration.
//
// Credentials come from a .env file at the workspace root (KEY=value lines,
// comments and quoting stripped) with process environment variables taking
// precedence. Non-secret tunables (retry policy, cache TTL, page sizes) live
// in .nexus/settings.toml; every setting has a default and the file is
// optional.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	nxerrors "github.com/nexushq/nexus/pkg/errors"
)

// Per-integration credential keys expected in .env or the environment.
const (
	KeySlackToken      = "SLACK_USER_TOKEN"
	KeyHubSpotToken    = "HUBSPOT_ACCESS_TOKEN"
	KeyBeamAPIKey      = "BEAM_API_KEY"
	KeyBeamWorkspaceID = "BEAM_WORKSPACE_ID"
	KeyAirtableAPIKey  = "AIRTABLE_API_KEY"
	KeyNotionAPIKey    = "NOTION_API_KEY"
	KeyHeyReachAPIKey  = "HEYREACH_API_KEY"
	KeyFathomAPIKey    = "FATHOM_API_KEY"
)

// Config holds resolved credentials and settings for one invocation.
// It is immutable after Load; lookups never touch the filesystem again.
type Config struct {
	dir      string
	env      map[string]string
	Settings Settings
}

// Load reads the .env file in dir (if present) and .nexus/settings.toml,
// returning an immutable Config. A missing .env is not an error; individual
// credentials are checked lazily via [Config.Require]. Loading never mutates
// the files, so repeated loads of the same directory are identical.
func Load(dir string) (*Config, error) {
	env, err := parseEnvFile(filepath.Join(dir, ".env"))
	if err != nil {
		return nil, nxerrors.Wrap(nxerrors.ErrCodeConfig, err, "reading .env")
	}

	settings, err := loadSettings(filepath.Join(dir, ".nexus", "settings.toml"))
	if err != nil {
		return nil, err
	}

	return &Config{dir: dir, env: env, Settings: settings}, nil
}

// Dir returns the workspace root this configuration was loaded from.
func (c *Config) Dir() string { return c.dir }

// Get returns the value for key, preferring the process environment over the
// .env file. Returns "" when the key is set nowhere.
func (c *Config) Get(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return c.env[key]
}

// Require returns the value for key or a configuration error naming the
// missing credential. The check is local and synchronous; callers must
// invoke it before building any client so no network call is ever attempted
// with absent credentials.
func (c *Config) Require(key string) (string, error) {
	if v := c.Get(key); v != "" {
		return v, nil
	}
	return "", nxerrors.New(nxerrors.ErrCodeMissingCredential, "missing credential %s", key).
		WithHint("add %s=... to %s or export it in your shell", key, filepath.Join(c.dir, ".env"))
}

// parseEnvFile reads KEY=value lines. Blank lines and # comments are
// skipped, an "export " prefix is tolerated, and single or double quotes
// around the value are stripped. Later assignments win.
func parseEnvFile(path string) (map[string]string, error) {
	env := make(map[string]string)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return env, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		if key != "" {
			env[key] = value
		}
	}
	return env, scanner.Err()
}
