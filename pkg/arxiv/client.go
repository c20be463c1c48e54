// Package arxiv provides a client for the arXiv Atom query API.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/time/rate"
)

// Client defines the arXiv query operations.
type Client interface {
	// Search queries arXiv and returns matching preprint entries.
	Search(ctx context.Context, query string, limit int) ([]Entry, error)
}

// Entry is one preprint from the Atom feed.
type Entry struct {
	ID         string     `xml:"id"`
	Title      string     `xml:"title"`
	Summary    string     `xml:"summary"`
	Published  time.Time  `xml:"published"`
	Authors    []Author   `xml:"author"`
	Categories []Category `xml:"category"`
}

// Author is a preprint author.
type Author struct {
	Name string `xml:"name"`
}

// Category is an arXiv subject classification.
type Category struct {
	Term string `xml:"term,attr"`
}

type feed struct {
	Entries []Entry `xml:"entry"`
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

// WithRateLimit sets the requests-per-second limit. arXiv asks for no more
// than one request every three seconds. Non-positive values are ignored.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an arXiv client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://export.arxiv.org",
		http:    &http.Client{Timeout: 20 * time.Second},
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "arxiv: rate limit wait")
	}

	q := url.Values{}
	q.Set("search_query", "all:"+query)
	q.Set("max_results", fmt.Sprintf("%d", limit))
	q.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/query?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "arxiv: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "arxiv: do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("arxiv: unexpected status %d", resp.StatusCode)
	}

	entries, err := decodeFeed(resp.Body)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// decodeFeed parses an Atom feed, honoring any declared charset.
func decodeFeed(r io.Reader) ([]Entry, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "arxiv: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var f feed
	if err := decoder.Decode(&f); err != nil {
		return nil, eris.Wrap(err, "arxiv: decode feed")
	}
	return f.Entries, nil
}
