package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.00001v1</id>
    <title>Attention Is Not All You Need</title>
    <summary>We revisit attention.</summary>
    <published>2023-01-02T10:00:00Z</published>
    <author><name>Jane Doe</name></author>
    <author><name>John Roe</name></author>
    <category term="cs.LG"/>
    <category term="stat.ML"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2301.00002v1</id>
    <title>Second Paper</title>
    <summary>More work.</summary>
    <published>2023-02-03T10:00:00Z</published>
    <author><name>Jane Doe</name></author>
    <category term="cs.CL"/>
  </entry>
</feed>`

func TestSearch_DecodesAtomFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/query", r.URL.Path)
		assert.Equal(t, "all:transformer models", r.URL.Query().Get("search_query"))
		assert.Equal(t, "7", r.URL.Query().Get("max_results"))
		fmt.Fprint(w, feedFixture)
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithRateLimit(1000))

	entries, err := c.Search(context.Background(), "transformer models", 7)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "http://arxiv.org/abs/2301.00001v1", first.ID)
	assert.Equal(t, "Attention Is Not All You Need", first.Title)
	assert.Equal(t, time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC), first.Published)
	require.Len(t, first.Authors, 2)
	assert.Equal(t, "Jane Doe", first.Authors[0].Name)
	assert.Equal(t, []Category{{Term: "cs.LG"}, {Term: "stat.ML"}}, first.Categories)
}

func TestDecodeFeed_DeclaredCharset(t *testing.T) {
	// Latin-1 body with a declared charset; é is byte 0xE9.
	body := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<feed xmlns=\"http://www.w3.org/2005/Atom\">" +
		"<entry><id>x</id><title>R\xe9sum\xe9s</title>" +
		"<author><name>Ren\xe9</name></author></entry></feed>"

	entries, err := decodeFeed(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Résumés", entries[0].Title)
	assert.Equal(t, "René", entries[0].Authors[0].Name)
}

func TestSearch_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithRateLimit(1000))

	_, err := c.Search(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
