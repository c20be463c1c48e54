// Package githubsearch provides a client for the GitHub user search API.
package githubsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Client defines the GitHub search operations.
type Client interface {
	// SearchUsers searches user profiles and hydrates each hit with the
	// user detail endpoint (bio, company, followers).
	SearchUsers(ctx context.Context, query string, limit int) ([]User, error)
}

// User is a hydrated GitHub user profile.
type User struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	HTMLURL     string `json:"html_url"`
	Followers   int    `json:"followers"`
	PublicRepos int    `json:"public_repos"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(base string) Option {
	return func(c *httpClient) { c.baseURL = base }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit sets the requests-per-second limit for API calls.
// Non-positive values are ignored.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
		}
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a GitHub search client. The token is optional;
// unauthenticated requests are heavily rate limited by GitHub.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://api.github.com",
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchUsersResponse struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		Login string `json:"login"`
	} `json:"items"`
}

func (c *httpClient) SearchUsers(ctx context.Context, query string, limit int) ([]User, error) {
	if limit <= 0 {
		limit = 10
	}

	q := url.Values{}
	q.Set("q", query+" type:user")
	q.Set("per_page", fmt.Sprintf("%d", limit))

	var search searchUsersResponse
	if err := c.getJSON(ctx, c.baseURL+"/search/users?"+q.Encode(), &search); err != nil {
		return nil, eris.Wrap(err, "githubsearch: search users")
	}

	users := make([]User, len(search.Items))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(5)

	var mu sync.Mutex
	for i, item := range search.Items {
		g.Go(func() error {
			var u User
			if err := c.getJSON(gCtx, c.baseURL+"/users/"+url.PathEscape(item.Login), &u); err != nil {
				// Hydration failure leaves a login-only record.
				zap.L().Debug("githubsearch: hydrate user failed",
					zap.String("login", item.Login),
					zap.Error(err),
				)
				u = User{Login: item.Login, HTMLURL: "https://github.com/" + item.Login}
			}
			mu.Lock()
			users[i] = u
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return users, nil
}

func (c *httpClient) getJSON(ctx context.Context, rawURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "githubsearch: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return eris.Wrap(err, "githubsearch: build request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "githubsearch: do request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "githubsearch: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("githubsearch: unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return eris.Wrap(json.Unmarshal(body, out), "githubsearch: decode response")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
