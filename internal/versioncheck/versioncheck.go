// Package versioncheck provides version checking for the vapid CLI.
// It fetches the latest release from GitHub and provides upgrade
// instructions based on how the tool was installed.
package versioncheck

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// InstallMethod indicates how the CLI reached the host.
type InstallMethod int

const (
	// DirectDownload is assumed when no package manager marker is found.
	DirectDownload InstallMethod = iota
	// Homebrew covers both /usr/local/Cellar and /opt/homebrew layouts.
	Homebrew
	// Apt means the binary came from a Debian or Ubuntu package.
	Apt
	// Rpm means the binary came from an RHEL or Fedora package.
	Rpm
	// Docker means the CLI is running inside a container image.
	Docker
)

// String returns a human-readable name for the install method.
func (m InstallMethod) String() string {
	switch m {
	case DirectDownload:
		return "direct-download"
	case Homebrew:
		return "homebrew"
	case Apt:
		return "apt"
	case Rpm:
		return "rpm"
	case Docker:
		return "docker"
	default:
		return "unknown"
	}
}

// CheckResult is the outcome of one update check.
type CheckResult struct {
	// CurrentVersion is the version of the running binary.
	CurrentVersion string
	// LatestVersion is the newest published version, or empty when the
	// check could not determine one.
	LatestVersion string
	// ReleaseURL points at the release notes for LatestVersion.
	ReleaseURL string
	// UpdateAvailable is true when LatestVersion is newer than CurrentVersion.
	UpdateAvailable bool
	// InstallMethod is how the binary appears to have been installed.
	InstallMethod InstallMethod
	// UpgradeCommand is the suggested command for InstallMethod.
	UpgradeCommand string
	// FromCache is true when the latest version came from the local cache.
	FromCache bool
	// Error holds the fetch error, if any. A stale cached version may
	// still be present alongside it.
	Error error
}

// Checker performs update checks against GitHub with a local cache in
// front of the API.
type Checker struct {
	GitHubClient *GitHubClient
	CachePath    string
	CacheTTL     time.Duration
}

// NewChecker returns a Checker wired to the public GitHub API with a
// 24 hour cache.
func NewChecker() *Checker {
	return &Checker{
		GitHubClient: NewGitHubClient(DefaultGitHubAPI),
		CachePath:    GetCachePath(),
		CacheTTL:     24 * time.Hour,
	}
}

// Check looks up the latest release for comparison with currentVersion.
// A valid cache entry short-circuits the network call. When the fetch
// fails, a stale cache entry is used if one exists; otherwise the
// result carries only the error.
func (c *Checker) Check(currentVersion string) *CheckResult {
	result := &CheckResult{
		CurrentVersion: currentVersion,
		InstallMethod:  DetectInstallMethod(),
	}

	cached, cacheErr := ReadCacheFile(c.CachePath)
	if cacheErr == nil && cached.IsValid(c.CacheTTL) {
		result.LatestVersion = cached.LatestVersion
		result.ReleaseURL = cached.ReleaseURL
		result.FromCache = true
		return c.finish(result)
	}

	release, fetchErr := c.GitHubClient.FetchLatestRelease()
	if fetchErr == nil {
		result.LatestVersion = stripVPrefix(release.TagName)
		result.ReleaseURL = release.HTMLURL
		// A failed cache write never fails the check itself.
		_ = WriteCacheFile(c.CachePath, &CacheEntry{
			LatestVersion: result.LatestVersion,
			ReleaseURL:    result.ReleaseURL,
			CheckedAt:     time.Now().UTC(),
		})
		return c.finish(result)
	}

	result.Error = fetchErr
	if cacheErr != nil || cached == nil {
		return result
	}

	// Expired cache beats no answer when GitHub is unreachable.
	result.LatestVersion = cached.LatestVersion
	result.ReleaseURL = cached.ReleaseURL
	result.FromCache = true
	return c.finish(result)
}

func (c *Checker) finish(result *CheckResult) *CheckResult {
	result.UpdateAvailable = IsNewerVersion(result.CurrentVersion, result.LatestVersion)
	result.UpgradeCommand = GetUpgradeCommand(result.InstallMethod, result.LatestVersion)
	return result
}

// DetectInstallMethod inspects the running executable's path and the
// host's package manager markers.
func DetectInstallMethod() InstallMethod {
	execPath, err := os.Executable()
	if err != nil {
		return DirectDownload
	}
	return DetectInstallMethodFromPath(execPath)
}

// DetectInstallMethodFromPath classifies an executable path. Split out
// from DetectInstallMethod so tests can pass synthetic paths.
func DetectInstallMethodFromPath(execPath string) InstallMethod {
	if strings.Contains(execPath, "/Cellar/") || strings.Contains(execPath, "/homebrew/") {
		return Homebrew
	}

	// dpkg leaves a file list behind for every installed package.
	if _, err := os.Stat("/var/lib/dpkg/info/vapid.list"); err == nil {
		return Apt
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return Docker
	}

	return DirectDownload
}

// GetUpgradeCommand returns the upgrade one-liner matching the install
// method. newVersion is only needed for image pulls.
func GetUpgradeCommand(method InstallMethod, newVersion string) string {
	switch method {
	case Homebrew:
		return "brew upgrade web-push-libs/tap/vapid"
	case Apt:
		return "sudo apt update && sudo apt upgrade vapid"
	case Rpm:
		return "sudo dnf upgrade vapid"
	case Docker:
		return "docker pull ghcr.io/web-push-libs/vapid:" + newVersion
	case DirectDownload:
		fallthrough
	default:
		return "Download from https://github.com/web-push-libs/vapid/releases"
	}
}

// IsNewerVersion reports whether latest is strictly newer than current
// under semver ordering. Malformed versions compare as not newer.
func IsNewerVersion(current, latest string) bool {
	currentNorm := NormalizeVersion(current)
	latestNorm := NormalizeVersion(latest)

	if !semver.IsValid(currentNorm) || !semver.IsValid(latestNorm) {
		return false
	}

	return semver.Compare(currentNorm, latestNorm) < 0
}

// NormalizeVersion prepends the v prefix the semver package requires.
func NormalizeVersion(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// stripVPrefix drops a leading v from a release tag.
func stripVPrefix(v string) string {
	return strings.TrimPrefix(v, "v")
}

// GetCachePath returns the version cache location, honoring
// XDG_CACHE_HOME and falling back to ~/.config.
func GetCachePath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "vapid", "version-cache.json")
		}
		cacheDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(cacheDir, "vapid", "version-cache.json")
}
