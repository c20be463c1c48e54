// Package hfhub provides a client for the Hugging Face Hub dataset search API.
package hfhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Hub operations.
type Client interface {
	// SearchDatasets searches public datasets by free text.
	SearchDatasets(ctx context.Context, query string, limit int) ([]Dataset, error)
}

// Dataset is one Hub dataset result.
type Dataset struct {
	ID           string   `json:"id"`
	Author       string   `json:"author"`
	Likes        int      `json:"likes"`
	Downloads    int      `json:"downloads"`
	Tags         []string `json:"tags"`
	LastModified string   `json:"lastModified"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(base string) Option {
	return func(c *httpClient) { c.baseURL = base }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit sets the requests-per-second limit. Non-positive values
// are ignored.
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

// NewClient creates a Hub client. The token is optional for public datasets.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://huggingface.co",
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchDatasets(ctx context.Context, query string, limit int) ([]Dataset, error) {
	if limit <= 0 {
		limit = 10
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "hfhub: rate limit wait")
	}

	q := url.Values{}
	q.Set("search", query)
	q.Set("limit", fmt.Sprintf("%d", limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/datasets?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "hfhub: build request")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "hfhub: do request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hfhub: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("hfhub: unexpected status %d", resp.StatusCode)
	}

	var datasets []Dataset
	if err := json.Unmarshal(body, &datasets); err != nil {
		return nil, eris.Wrap(err, "hfhub: decode response")
	}
	return datasets, nil
}
