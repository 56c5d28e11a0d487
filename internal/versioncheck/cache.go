package versioncheck

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// CacheEntry is one recorded answer from the release endpoint.
type CacheEntry struct {
	// LatestVersion is the newest known release, without the v prefix.
	LatestVersion string `json:"latest_version"`
	// ReleaseURL points at the release notes page.
	ReleaseURL string `json:"release_url"`
	// CheckedAt is when the endpoint was last asked.
	CheckedAt time.Time `json:"checked_at"`
}

// IsValid reports whether the entry is fresh enough to serve without
// asking the endpoint again.
func (c *CacheEntry) IsValid(ttl time.Duration) bool {
	if c == nil {
		return false
	}
	return time.Since(c.CheckedAt) < ttl
}

// ReadCacheFile loads the cache entry stored at path.
func ReadCacheFile(path string) (*CacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

// WriteCacheFile stores the entry at path, creating parent directories
// as needed. Concurrent CLI invocations share this file, so the entry
// goes through a temp file and a rename.
func WriteCacheFile(path string, entry *CacheEntry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "version-cache-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
