package versioncheck

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// releaseServer serves a GitHub latest-release response on the path the
// client is expected to request.
func releaseServer(t *testing.T, status int, tagName string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/web-push-libs/vapid/releases/latest" {
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"tag_name": tagName,
			"html_url": "https://github.com/web-push-libs/vapid/releases/tag/" + tagName,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

// ----- InstallMethod Detection Tests -----

func TestDetectInstallMethod_Homebrew_Cellar(t *testing.T) {
	method := DetectInstallMethodFromPath("/usr/local/Cellar/vapid/1.4.0/bin/vapid")
	if method != Homebrew {
		t.Errorf("expected Homebrew, got %v", method)
	}
}

func TestDetectInstallMethod_Homebrew_HomePath(t *testing.T) {
	method := DetectInstallMethodFromPath("/opt/homebrew/bin/vapid")
	if method != Homebrew {
		t.Errorf("expected Homebrew, got %v", method)
	}
}

func TestDetectInstallMethod_DirectDownload(t *testing.T) {
	// Default fallback when no detection matches
	method := DetectInstallMethodFromPath("/usr/local/bin/vapid")
	if method != DirectDownload && method != Apt && method != Docker {
		t.Errorf("expected a system-dependent fallback, got %v", method)
	}
}

// ----- Version Comparison Tests -----

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		latest   string
		expected bool
	}{
		{"newer available", "1.3.9", "1.4.0", true},
		{"current is latest", "1.4.0", "1.4.0", false},
		{"current is newer", "1.4.1", "1.4.0", false},
		{"major version bump", "1.4.0", "2.0.0", true},
		{"with v prefix current", "v1.3.9", "1.4.0", true},
		{"with v prefix latest", "1.3.9", "v1.4.0", true},
		{"both with v prefix", "v1.3.9", "v1.4.0", true},
		{"pre-release lower than release", "1.4.0-rc1", "1.4.0", true},
		{"pre-release comparison", "1.4.0-alpha", "1.4.0-beta", true},
		{"build metadata ignored", "1.4.0+build123", "1.4.0", false},
		{"invalid current", "invalid", "1.4.0", false},
		{"invalid latest", "1.3.9", "invalid", false},
		{"dev build", "dev", "1.4.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsNewerVersion(tt.current, tt.latest)
			if result != tt.expected {
				t.Errorf("IsNewerVersion(%s, %s) = %v, want %v",
					tt.current, tt.latest, result, tt.expected)
			}
		})
	}
}

// ----- Cache Tests -----

func TestCacheReadWrite(t *testing.T) {
	tmpDir := t.TempDir()
	cacheFile := filepath.Join(tmpDir, "version-cache.json")

	entry := &CacheEntry{
		LatestVersion: "1.4.0",
		ReleaseURL:    "https://github.com/web-push-libs/vapid/releases/tag/v1.4.0",
		CheckedAt:     time.Now().UTC(),
	}

	err := WriteCacheFile(cacheFile, entry)
	if err != nil {
		t.Fatalf("WriteCacheFile failed: %v", err)
	}

	read, err := ReadCacheFile(cacheFile)
	if err != nil {
		t.Fatalf("ReadCacheFile failed: %v", err)
	}

	if read.LatestVersion != entry.LatestVersion {
		t.Errorf("expected LatestVersion %s, got %s", entry.LatestVersion, read.LatestVersion)
	}
	if read.ReleaseURL != entry.ReleaseURL {
		t.Errorf("expected ReleaseURL %s, got %s", entry.ReleaseURL, read.ReleaseURL)
	}
}

func TestCacheValid(t *testing.T) {
	// Fresh cache (checked 1 hour ago)
	fresh := &CacheEntry{
		LatestVersion: "1.4.0",
		CheckedAt:     time.Now().Add(-1 * time.Hour),
	}
	if !fresh.IsValid(24 * time.Hour) {
		t.Error("expected fresh cache to be valid")
	}

	// Expired cache (checked 25 hours ago)
	expired := &CacheEntry{
		LatestVersion: "1.4.0",
		CheckedAt:     time.Now().Add(-25 * time.Hour),
	}
	if expired.IsValid(24 * time.Hour) {
		t.Error("expected expired cache to be invalid")
	}
}

func TestCacheReadNonExistent(t *testing.T) {
	_, err := ReadCacheFile("/nonexistent/path/cache.json")
	if err == nil {
		t.Error("expected error for nonexistent cache file")
	}
}

func TestCacheWriteCreatesDir(t *testing.T) {
	tmpDir := t.TempDir()
	nestedPath := filepath.Join(tmpDir, "subdir", "version-cache.json")

	entry := &CacheEntry{
		LatestVersion: "1.4.0",
		CheckedAt:     time.Now().UTC(),
	}

	err := WriteCacheFile(nestedPath, entry)
	if err != nil {
		t.Fatalf("WriteCacheFile failed to create nested dir: %v", err)
	}

	if _, err := os.Stat(nestedPath); err != nil {
		t.Errorf("cache file not created: %v", err)
	}
}

// ----- Upgrade Command Tests -----

func TestGetUpgradeCommand(t *testing.T) {
	tests := []struct {
		method   InstallMethod
		version  string
		expected string
	}{
		{Homebrew, "1.4.0", "brew upgrade web-push-libs/tap/vapid"},
		{Apt, "1.4.0", "sudo apt update && sudo apt upgrade vapid"},
		{Rpm, "1.4.0", "sudo dnf upgrade vapid"},
		{Docker, "1.4.0", "docker pull ghcr.io/web-push-libs/vapid:1.4.0"},
		{DirectDownload, "1.4.0", "Download from https://github.com/web-push-libs/vapid/releases"},
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			result := GetUpgradeCommand(tt.method, tt.version)
			if result != tt.expected {
				t.Errorf("GetUpgradeCommand(%v, %s) = %q, want %q",
					tt.method, tt.version, result, tt.expected)
			}
		})
	}
}

// ----- InstallMethod String Tests -----

func TestInstallMethodString(t *testing.T) {
	tests := []struct {
		method   InstallMethod
		expected string
	}{
		{DirectDownload, "direct-download"},
		{Homebrew, "homebrew"},
		{Apt, "apt"},
		{Rpm, "rpm"},
		{Docker, "docker"},
		{InstallMethod(99), "unknown"},
	}

	for _, tt := range tests {
		if tt.method.String() != tt.expected {
			t.Errorf("InstallMethod(%d).String() = %s, want %s",
				tt.method, tt.method.String(), tt.expected)
		}
	}
}

// ----- GitHub API Client Tests -----

func TestParseGitHubRelease(t *testing.T) {
	responseJSON := `{
		"tag_name": "v1.4.0",
		"html_url": "https://github.com/web-push-libs/vapid/releases/tag/v1.4.0",
		"name": "Release 1.4.0"
	}`

	var release GitHubRelease
	err := json.Unmarshal([]byte(responseJSON), &release)
	if err != nil {
		t.Fatalf("failed to parse GitHub release: %v", err)
	}

	if release.TagName != "v1.4.0" {
		t.Errorf("expected tag_name v1.4.0, got %s", release.TagName)
	}
	if release.HTMLURL != "https://github.com/web-push-libs/vapid/releases/tag/v1.4.0" {
		t.Errorf("unexpected html_url: %s", release.HTMLURL)
	}
}

func TestFetchLatestVersion_Success(t *testing.T) {
	server := releaseServer(t, http.StatusOK, "v1.4.0")

	client := NewGitHubClient(server.URL)
	release, err := client.FetchLatestRelease()
	if err != nil {
		t.Fatalf("FetchLatestRelease failed: %v", err)
	}

	if release.TagName != "v1.4.0" {
		t.Errorf("expected tag_name v1.4.0, got %s", release.TagName)
	}
}

func TestFetchLatestVersion_Timeout(t *testing.T) {
	// Mock server that delays response
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(3 * time.Second) // Longer than timeout
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewGitHubClientWithTimeout(server.URL, 100*time.Millisecond)
	_, err := client.FetchLatestRelease()
	if err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestFetchLatestVersion_NotFound(t *testing.T) {
	server := releaseServer(t, http.StatusNotFound, "")

	client := NewGitHubClient(server.URL)
	_, err := client.FetchLatestRelease()
	if err == nil {
		t.Error("expected error for 404, got nil")
	}
}

// ----- Integration Tests -----

func TestCheck_WithMockServer(t *testing.T) {
	server := releaseServer(t, http.StatusOK, "v1.4.1")

	tmpDir := t.TempDir()
	cacheFile := filepath.Join(tmpDir, "version-cache.json")

	checker := &Checker{
		GitHubClient: NewGitHubClient(server.URL),
		CachePath:    cacheFile,
		CacheTTL:     24 * time.Hour,
	}

	result := checker.Check("1.4.0")

	if result.Error != nil {
		t.Fatalf("Check failed: %v", result.Error)
	}
	if !result.UpdateAvailable {
		t.Error("expected UpdateAvailable = true")
	}
	if result.CurrentVersion != "1.4.0" {
		t.Errorf("expected CurrentVersion 1.4.0, got %s", result.CurrentVersion)
	}
	if result.LatestVersion != "1.4.1" {
		t.Errorf("expected LatestVersion 1.4.1, got %s", result.LatestVersion)
	}
	if result.FromCache {
		t.Error("expected FromCache = false for fresh fetch")
	}
}

func TestCheck_UsesCache(t *testing.T) {
	tmpDir := t.TempDir()
	cacheFile := filepath.Join(tmpDir, "version-cache.json")

	// Pre-populate cache
	entry := &CacheEntry{
		LatestVersion: "1.4.2",
		ReleaseURL:    "https://github.com/web-push-libs/vapid/releases/tag/v1.4.2",
		CheckedAt:     time.Now().Add(-1 * time.Hour), // 1 hour ago, still valid
	}
	if err := WriteCacheFile(cacheFile, entry); err != nil {
		t.Fatalf("failed to pre-populate cache: %v", err)
	}

	// Server that should NOT be called
	serverCalled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverCalled = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := &Checker{
		GitHubClient: NewGitHubClient(server.URL),
		CachePath:    cacheFile,
		CacheTTL:     24 * time.Hour,
	}

	result := checker.Check("1.4.0")

	if serverCalled {
		t.Error("server should not be called when cache is valid")
	}
	if result.Error != nil {
		t.Fatalf("Check failed: %v", result.Error)
	}
	if !result.FromCache {
		t.Error("expected FromCache = true")
	}
	if result.LatestVersion != "1.4.2" {
		t.Errorf("expected LatestVersion from cache (1.4.2), got %s", result.LatestVersion)
	}
}

func TestCheck_ExpiredCacheFetchesFresh(t *testing.T) {
	tmpDir := t.TempDir()
	cacheFile := filepath.Join(tmpDir, "version-cache.json")

	// Pre-populate expired cache
	entry := &CacheEntry{
		LatestVersion: "1.4.1",
		ReleaseURL:    "https://github.com/web-push-libs/vapid/releases/tag/v1.4.1",
		CheckedAt:     time.Now().Add(-25 * time.Hour), // 25 hours ago, expired
	}
	if err := WriteCacheFile(cacheFile, entry); err != nil {
		t.Fatalf("failed to pre-populate cache: %v", err)
	}

	server := releaseServer(t, http.StatusOK, "v1.4.3")

	checker := &Checker{
		GitHubClient: NewGitHubClient(server.URL),
		CachePath:    cacheFile,
		CacheTTL:     24 * time.Hour,
	}

	result := checker.Check("1.4.0")

	if result.Error != nil {
		t.Fatalf("Check failed: %v", result.Error)
	}
	if result.FromCache {
		t.Error("expected FromCache = false after expired cache refresh")
	}
	if result.LatestVersion != "1.4.3" {
		t.Errorf("expected fresh LatestVersion (1.4.3), got %s", result.LatestVersion)
	}
}

func TestCheck_FetchFailsUsesStaleCache(t *testing.T) {
	tmpDir := t.TempDir()
	cacheFile := filepath.Join(tmpDir, "version-cache.json")

	// Pre-populate expired cache
	entry := &CacheEntry{
		LatestVersion: "1.4.1",
		ReleaseURL:    "https://github.com/web-push-libs/vapid/releases/tag/v1.4.1",
		CheckedAt:     time.Now().Add(-25 * time.Hour), // expired
	}
	if err := WriteCacheFile(cacheFile, entry); err != nil {
		t.Fatalf("failed to pre-populate cache: %v", err)
	}

	server := releaseServer(t, http.StatusServiceUnavailable, "")

	checker := &Checker{
		GitHubClient: NewGitHubClient(server.URL),
		CachePath:    cacheFile,
		CacheTTL:     24 * time.Hour,
	}

	result := checker.Check("1.4.0")

	// Should use stale cache
	if result.LatestVersion != "1.4.1" {
		t.Errorf("expected stale cache version (1.4.1), got %s", result.LatestVersion)
	}
	if !result.FromCache {
		t.Error("expected FromCache = true when using stale cache")
	}
	// Error should still be reported
	if result.Error == nil {
		t.Error("expected Error to be set when using stale cache")
	}
}

func TestCheck_FetchFailsNoCacheReturnsError(t *testing.T) {
	tmpDir := t.TempDir()
	cacheFile := filepath.Join(tmpDir, "version-cache.json")
	// No cache file exists

	server := releaseServer(t, http.StatusServiceUnavailable, "")

	checker := &Checker{
		GitHubClient: NewGitHubClient(server.URL),
		CachePath:    cacheFile,
		CacheTTL:     24 * time.Hour,
	}

	result := checker.Check("1.4.0")

	if result.Error == nil {
		t.Error("expected Error when fetch fails and no cache")
	}
	if result.LatestVersion != "" {
		t.Errorf("expected empty LatestVersion, got %s", result.LatestVersion)
	}
}

func TestCheck_NoUpdateAvailable(t *testing.T) {
	server := releaseServer(t, http.StatusOK, "v1.4.0")

	tmpDir := t.TempDir()
	cacheFile := filepath.Join(tmpDir, "version-cache.json")

	checker := &Checker{
		GitHubClient: NewGitHubClient(server.URL),
		CachePath:    cacheFile,
		CacheTTL:     24 * time.Hour,
	}

	result := checker.Check("1.4.0")

	if result.Error != nil {
		t.Fatalf("Check failed: %v", result.Error)
	}
	if result.UpdateAvailable {
		t.Error("expected UpdateAvailable = false when current equals latest")
	}
}

// ----- Helper function for cache path tests -----

func TestGetCachePath(t *testing.T) {
	// Test with XDG_CACHE_HOME set
	tmpDir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", tmpDir)

	path := GetCachePath()
	expected := filepath.Join(tmpDir, "vapid", "version-cache.json")
	if path != expected {
		t.Errorf("expected cache path %s, got %s", expected, path)
	}

	// Test without XDG_CACHE_HOME (uses ~/.config)
	t.Setenv("XDG_CACHE_HOME", "")
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	path = GetCachePath()
	expected = filepath.Join(homeDir, ".config", "vapid", "version-cache.json")
	if path != expected {
		t.Errorf("expected cache path %s, got %s", expected, path)
	}
}

// ----- Normalize version tests -----

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.4.0", "v1.4.0"},
		{"v1.4.0", "v1.4.0"},
		{"2.0.0", "v2.0.0"},
		{"1.4.0-rc1", "v1.4.0-rc1"},
		{"v1.4.0-rc1", "v1.4.0-rc1"},
		{"1.4.0+build", "v1.4.0+build"},
	}

	for _, tt := range tests {
		result := NormalizeVersion(tt.input)
		if result != tt.expected {
			t.Errorf("NormalizeVersion(%s) = %s, want %s", tt.input, result, tt.expected)
		}
	}
}
