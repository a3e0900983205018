package airtable

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	nxerrors "github.com/nexushq/nexus/pkg/errors"
)

// BaseCachePath is the workspace-relative path of the base-list cache file.
const BaseCachePath = "01-memory/integrations/airtable-bases.yaml"

// BaseCache is the on-disk snapshot of discovered bases. It is a flat,
// timestamped dump, overwritten wholesale on every refresh.
type BaseCache struct {
	DiscoveredAt time.Time `yaml:"discovered_at"`
	TotalBases   int       `yaml:"total_bases"`
	Bases        []Base    `yaml:"bases"`
}

// SyncBases fetches the full base list and writes the YAML cache file at
// path, creating parent directories as needed.
func (c *Client) SyncBases(ctx context.Context, path string) (*BaseCache, error) {
	bases, err := c.ListBases(ctx)
	if err != nil {
		return nil, err
	}

	cache := &BaseCache{
		DiscoveredAt: time.Now().UTC().Truncate(time.Second),
		TotalBases:   len(bases),
		Bases:        bases,
	}
	if err := cache.Write(path); err != nil {
		return nil, err
	}
	return cache, nil
}

// Write marshals the cache to YAML at path.
func (c *BaseCache) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nxerrors.Wrap(nxerrors.ErrCodeInternal, err, "encoding base cache")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nxerrors.Wrap(nxerrors.ErrCodeInternal, err, "creating cache directory")
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadBaseCache loads a previously written cache file.
func ReadBaseCache(path string) (*BaseCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cache BaseCache
	if err := yaml.Unmarshal(data, &cache); err != nil {
		return nil, nxerrors.Wrap(nxerrors.ErrCodeInternal, err, "parsing base cache %s", path)
	}
	return &cache, nil
}
