// Package github looks up a user's public repositories on the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// RepoPageSize is the number of repositories returned per lookup.
	RepoPageSize = 5

	maxBodyBytes = 1 << 20
	userAgent    = "devconnector"
)

// ErrNoProfile covers every failed lookup: unknown user, rate limiting,
// network errors and unexpected payloads.
var ErrNoProfile = errors.New("no github profile found")

// Client calls the GitHub API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// New creates a new GitHub client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}

	return &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Repos returns the newest-created-last page of username's repositories as
// the raw JSON array GitHub sent. Failures are not retried.
func (c *Client) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrNoProfile
	}

	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=%d&sort=created:asc",
		c.baseURL, url.PathEscape(username), RepoPageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrNoProfile, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoProfile, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream status %d", ErrNoProfile, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNoProfile, err)
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsArray() {
		return nil, fmt.Errorf("%w: unexpected payload", ErrNoProfile)
	}

	return json.RawMessage(body), nil
}

// RepoNames lists the "name" of every repository in a Repos payload.
func RepoNames(repos json.RawMessage) []string {
	names := make([]string, 0, RepoPageSize)
	for _, n := range gjson.GetBytes(repos, "#.name").Array() {
		names = append(names, n.String())
	}
	return names
}
