package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	nxerrors "github.com/nexushq/nexus/pkg/errors"
	"github.com/nexushq/nexus/pkg/httputil"
)

// Settings holds the non-secret tunables from .nexus/settings.toml.
// Zero fields fall back to the defaults below, so a partial file only
// overrides what it names.
type Settings struct {
	MaxRetries  int     `toml:"max_retries"`
	BaseDelayMS int     `toml:"base_delay_ms"`
	MaxDelayMS  int     `toml:"max_delay_ms"`
	Jitter      float64 `toml:"jitter"`
	CacheTTLMin int     `toml:"cache_ttl_minutes"`
	PageSize    int     `toml:"page_size"`
}

func defaultSettings() Settings {
	return Settings{
		MaxRetries:  3,
		BaseDelayMS: 1000,
		MaxDelayMS:  30000,
		Jitter:      0.2,
		CacheTTLMin: 60,
		PageSize:    100,
	}
}

func loadSettings(path string) (Settings, error) {
	s := defaultSettings()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Settings{}, nxerrors.Wrap(nxerrors.ErrCodeConfig, err, "parsing %s", path)
	}

	// Re-fill anything the file zeroed out or omitted.
	d := defaultSettings()
	if s.MaxRetries <= 0 {
		s.MaxRetries = d.MaxRetries
	}
	if s.BaseDelayMS <= 0 {
		s.BaseDelayMS = d.BaseDelayMS
	}
	if s.MaxDelayMS <= 0 {
		s.MaxDelayMS = d.MaxDelayMS
	}
	if s.Jitter < 0 || s.Jitter > 1 {
		s.Jitter = d.Jitter
	}
	if s.CacheTTLMin <= 0 {
		s.CacheTTLMin = d.CacheTTLMin
	}
	if s.PageSize <= 0 {
		s.PageSize = d.PageSize
	}
	return s, nil
}

// Backoff converts the settings into the retry policy used by all clients.
func (s Settings) Backoff() httputil.Backoff {
	return httputil.Backoff{
		MaxRetries: s.MaxRetries,
		BaseDelay:  time.Duration(s.BaseDelayMS) * time.Millisecond,
		MaxDelay:   time.Duration(s.MaxDelayMS) * time.Millisecond,
		Jitter:     s.Jitter,
	}
}

// CacheTTL returns the response cache TTL.
func (s Settings) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLMin) * time.Minute
}
