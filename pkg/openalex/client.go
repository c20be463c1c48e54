// Package openalex provides a client for the OpenAlex author search API.
package openalex

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

// Client defines the OpenAlex operations.
type Client interface {
	// SearchAuthors searches academic authors by name or topic.
	SearchAuthors(ctx context.Context, query string, limit int) ([]Author, error)
}

// Author is an OpenAlex author result.
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ORCID       string `json:"orcid"`
	CitedCount  int    `json:"cited_by_count"`
	WorksCount  int    `json:"works_count"`
	Institution string `json:"-"`
	Country     string `json:"-"`
}

type authorsResponse struct {
	Results []struct {
		ID                    string `json:"id"`
		DisplayName           string `json:"display_name"`
		ORCID                 string `json:"orcid"`
		CitedByCount          int    `json:"cited_by_count"`
		WorksCount            int    `json:"works_count"`
		LastKnownInstitutions []struct {
			DisplayName string `json:"display_name"`
			CountryCode string `json:"country_code"`
		} `json:"last_known_institutions"`
	} `json:"results"`
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

// WithMailto identifies the caller to OpenAlex's polite pool.
func WithMailto(email string) Option {
	return func(c *httpClient) { c.mailto = email }
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
	baseURL string
	mailto  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an OpenAlex client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://api.openalex.org",
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchAuthors(ctx context.Context, query string, limit int) ([]Author, error) {
	if limit <= 0 {
		limit = 10
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "openalex: rate limit wait")
	}

	q := url.Values{}
	q.Set("search", query)
	q.Set("per_page", fmt.Sprintf("%d", limit))
	if c.mailto != "" {
		q.Set("mailto", c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/authors?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "openalex: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "openalex: do request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "openalex: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("openalex: unexpected status %d", resp.StatusCode)
	}

	var parsed authorsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "openalex: decode response")
	}

	authors := make([]Author, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		a := Author{
			ID:          r.ID,
			DisplayName: r.DisplayName,
			ORCID:       r.ORCID,
			CitedCount:  r.CitedByCount,
			WorksCount:  r.WorksCount,
		}
		if len(r.LastKnownInstitutions) > 0 {
			a.Institution = r.LastKnownInstitutions[0].DisplayName
			a.Country = r.LastKnownInstitutions[0].CountryCode
		}
		authors = append(authors, a)
	}
	return authors, nil
}
