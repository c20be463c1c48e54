package openalex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authorsFixture = `{
	"results": [
		{
			"id": "https://openalex.org/A1",
			"display_name": "Jane Doe",
			"orcid": "https://orcid.org/0000-0001",
			"cited_by_count": 4200,
			"works_count": 85,
			"last_known_institutions": [
				{"display_name": "MIT", "country_code": "US"}
			]
		},
		{
			"id": "https://openalex.org/A2",
			"display_name": "John Roe",
			"cited_by_count": 12,
			"works_count": 3,
			"last_known_institutions": []
		}
	]
}`

func TestSearchAuthors_DecodesResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authors", r.URL.Path)
		assert.Equal(t, "graph neural networks", r.URL.Query().Get("search"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		assert.Equal(t, "ops@example.com", r.URL.Query().Get("mailto"))
		fmt.Fprint(w, authorsFixture)
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithMailto("ops@example.com"), WithRateLimit(1000))

	authors, err := c.SearchAuthors(context.Background(), "graph neural networks", 5)
	require.NoError(t, err)
	require.Len(t, authors, 2)

	assert.Equal(t, "https://openalex.org/A1", authors[0].ID)
	assert.Equal(t, "Jane Doe", authors[0].DisplayName)
	assert.Equal(t, "https://orcid.org/0000-0001", authors[0].ORCID)
	assert.Equal(t, 4200, authors[0].CitedCount)
	assert.Equal(t, 85, authors[0].WorksCount)
	assert.Equal(t, "MIT", authors[0].Institution)
	assert.Equal(t, "US", authors[0].Country)

	// Missing institutions leave the fields empty.
	assert.Empty(t, authors[1].Institution)
	assert.Empty(t, authors[1].Country)
}

func TestSearchAuthors_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithRateLimit(1000))

	_, err := c.SearchAuthors(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
