// Package ghclient reads pull requests, review threads, commits and
// branches of a GitHub organization.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v57/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"
)

const graphqlEndpoint = "https://api.github.com/graphql"

// ErrNoToken is returned when no token is configured.
var ErrNoToken = errors.New("GitHub token not provided. Set the GITHUB_TOKEN environment variable")

// Client wraps the GitHub REST and GraphQL APIs.
type Client struct {
	client     *gh.Client
	httpClient *http.Client
	graphqlURL string
	limits     *RateLimitState
}

// NewClient creates a client authenticated with a personal access token.
// Requests go through, from the outside in: secondary rate limit handling,
// token auth, primary rate limit tracking and an ETag cache.
func NewClient(ctx context.Context, token string) (*Client, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	limits := &RateLimitState{}
	cached := httpcache.NewMemoryCacheTransport()
	tracked := &rateLimitTransport{base: cached, state: limits}
	authed := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		Base:   tracked,
	}
	httpClient := github_ratelimit.NewClient(authed)

	return &Client{
		client:     gh.NewClient(httpClient),
		httpClient: httpClient,
		graphqlURL: graphqlEndpoint,
		limits:     limits,
	}, nil
}

// NewClientWithHTTPClient creates a client against a custom base URL, with
// GraphQL served at {baseURL}/graphql. Intended for tests.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	limits := &RateLimitState{}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := &http.Client{
		Transport: &rateLimitTransport{base: base, state: limits},
		Timeout:   httpClient.Timeout,
	}

	client := gh.NewClient(wrapped)
	client.BaseURL = u

	graphqlURL := *u
	graphqlURL.Path = strings.TrimSuffix(u.Path, "/") + "/graphql"

	return &Client{
		client:     client,
		httpClient: wrapped,
		graphqlURL: graphqlURL.String(),
		limits:     limits,
	}, nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}

// RateLimitState returns the quota observed on responses so far.
func (c *Client) RateLimitState() *RateLimitState { return c.limits }

// splitRepo splits "owner/name".
func splitRepo(fullName string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/name", fullName)
	}
	return owner, repo, nil
}
