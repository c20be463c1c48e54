package hfhub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchDatasets_DecodesResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/datasets", r.URL.Path)
		assert.Equal(t, "mnist", r.URL.Query().Get("search"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		assert.Empty(t, r.Header.Get("Authorization"))
		fmt.Fprint(w, `[
			{
				"id": "ylecun/mnist",
				"author": "ylecun",
				"likes": 350,
				"downloads": 120000,
				"tags": ["task_categories:image-classification", "size_categories:10K<n<100K"],
				"lastModified": "2024-08-08T06:07:00.000Z"
			},
			{"id": "bare/minimum"}
		]`)
	}))
	defer ts.Close()

	c := NewClient("", WithBaseURL(ts.URL), WithRateLimit(1000))

	datasets, err := c.SearchDatasets(context.Background(), "mnist", 3)
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	d := datasets[0]
	assert.Equal(t, "ylecun/mnist", d.ID)
	assert.Equal(t, "ylecun", d.Author)
	assert.Equal(t, 350, d.Likes)
	assert.Equal(t, 120000, d.Downloads)
	assert.Len(t, d.Tags, 2)

	assert.Empty(t, datasets[1].Author)
}

func TestSearchDatasets_SendsToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `[]`)
	}))
	defer ts.Close()

	c := NewClient("hf_test", WithBaseURL(ts.URL), WithRateLimit(1000))
	_, err := c.SearchDatasets(context.Background(), "x", 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer hf_test", gotAuth)
}

func TestSearchDatasets_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := NewClient("", WithBaseURL(ts.URL), WithRateLimit(1000))

	_, err := c.SearchDatasets(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
