package versioncheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultGitHubAPI is the base URL for the GitHub API.
const DefaultGitHubAPI = "https://api.github.com"

// DefaultTimeout bounds the release lookup. The check runs during
// normal CLI commands, so it has to give up quickly.
const DefaultTimeout = 2 * time.Second

// releasePath is the API path of this project's latest release.
const releasePath = "/repos/web-push-libs/vapid/releases/latest"

// GitHubRelease holds the fields of a release response the checker
// cares about.
type GitHubRelease struct {
	// TagName is the release tag (e.g., "v1.4.0").
	TagName string `json:"tag_name"`
	// HTMLURL is the URL to the release page.
	HTMLURL string `json:"html_url"`
	// Name is the human-readable release name.
	Name string `json:"name"`
}

// GitHubClient fetches release information from GitHub.
type GitHubClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGitHubClient returns a client with the default timeout.
func NewGitHubClient(baseURL string) *GitHubClient {
	return NewGitHubClientWithTimeout(baseURL, DefaultTimeout)
}

// NewGitHubClientWithTimeout returns a client with an explicit timeout.
func NewGitHubClientWithTimeout(baseURL string, timeout time.Duration) *GitHubClient {
	return &GitHubClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchLatestRelease asks the GitHub API for the newest published
// release of this project.
func (c *GitHubClient) FetchLatestRelease() (*GitHubRelease, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.httpClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+releasePath, nil)
	if err != nil {
		return nil, fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "vapid-cli")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	release := new(GitHubRelease)
	if err := json.NewDecoder(resp.Body).Decode(release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	return release, nil
}
