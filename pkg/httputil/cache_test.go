package httputil

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	in := map[string]string{"id": "app123", "name": "CRM"}
	if err := c.Set("bases", in); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	var out map[string]string
	ok, err := c.Get("bases", &out)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want hit", ok, err)
	}
	if out["id"] != "app123" || out["name"] != "CRM" {
		t.Errorf("Get() value = %v", out)
	}
}

func TestCacheMiss(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	var out map[string]string
	ok, err := c.Get("absent", &out)
	if ok || err != nil {
		t.Errorf("Get() = %v, %v; want clean miss", ok, err)
	}
}

func TestCacheExpiry(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("stale", "value"); err != nil {
		t.Fatal(err)
	}

	// Age the entry past its TTL by rewinding the file's mtime.
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ReadDir = %v entries, %v", len(entries), err)
	}
	old := time.Now().Add(-2 * time.Minute)
	if err := os.Chtimes(dir+"/"+entries[0].Name(), old, old); err != nil {
		t.Fatal(err)
	}

	var out string
	ok, err := c.Get("stale", &out)
	if ok || !errors.Is(err, ErrExpired) {
		t.Errorf("Get() = %v, %v; want ErrExpired", ok, err)
	}
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("forever", "value"); err != nil {
		t.Fatal(err)
	}

	entries, _ := os.ReadDir(dir)
	old := time.Now().Add(-24 * time.Hour)
	os.Chtimes(dir+"/"+entries[0].Name(), old, old)

	var out string
	ok, err := c.Get("forever", &out)
	if !ok || err != nil {
		t.Errorf("Get() = %v, %v; want hit", ok, err)
	}
}

func TestCacheNamespaceIsolation(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	slack := c.Namespace("slack:")
	notion := c.Namespace("notion:")
	if err := slack.Set("channels", "slack-data"); err != nil {
		t.Fatal(err)
	}

	var out string
	if ok, _ := notion.Get("channels", &out); ok {
		t.Error("namespaced entries leaked across prefixes")
	}
	if ok, _ := slack.Get("channels", &out); !ok || out != "slack-data" {
		t.Errorf("Get() in owning namespace = %v, %q", ok, out)
	}
}

func TestCacheOverwriteResetsValue(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("k", "v2"); err != nil {
		t.Fatal(err)
	}

	var out string
	if ok, _ := c.Get("k", &out); !ok || out != "v2" {
		t.Errorf("Get() = %v, %q; want v2", ok, out)
	}
}
