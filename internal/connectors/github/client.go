package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client for one credential.
type Client struct {
	gh          *gh.Client
	credential  string
	rateLimiter *RateLimiter
}

// NewClient creates a GitHub API client. An empty credential yields an
// unauthenticated client.
func NewClient(ctx context.Context, credential string, cfg Config) (*Client, error) {
	var httpClient *http.Client
	switch {
	case credential != "":
		if cfg.HTTPClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = cfg.timeout()
	case cfg.HTTPClient != nil:
		httpClient = cfg.HTTPClient
	default:
		httpClient = &http.Client{Timeout: cfg.timeout()}
	}

	client := gh.NewClient(httpClient)
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		client.BaseURL = base
	}

	return &Client{
		gh:          client,
		credential:  credential,
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// Authenticated reports whether requests carry a credential.
func (c *Client) Authenticated() bool {
	return c.credential != ""
}

// GetContents lists a directory or returns a file. Exactly one of the
// two results is non-nil on success. Errors are *domain.FetchError.
func (c *Client) GetContents(
	ctx context.Context, owner, repo, path string,
) (*gh.RepositoryContent, []*gh.RepositoryContent, error) {
	target := c.contentsURL(owner, repo, path)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, nil, c.wrapError(err, target)
	}

	file, dir, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, nil, c.wrapError(err, target)
	}
	return file, dir, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

func (c *Client) contentsURL(owner, repo, path string) string {
	return fmt.Sprintf("%srepos/%s/%s/contents/%s", c.gh.BaseURL, owner, repo, path)
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}
