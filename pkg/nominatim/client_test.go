package nominatim

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

const searchFixture = `[
	{
		"place_id": 12345,
		"display_name": "Blue Bottle Coffee, Berlin, Germany",
		"category": "amenity",
		"type": "cafe",
		"importance": 0.42,
		"lat": "52.5200",
		"lon": "13.4050"
	},
	{
		"place_id": 67890,
		"display_name": "Broken Row",
		"lat": "not-a-number",
		"lon": "13.0"
	}
]`

func TestSearch_DecodesPlaces(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "cafes berlin", r.URL.Query().Get("q"))
		fmt.Fprint(w, searchFixture)
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithUserAgent("test-agent/1.0"), WithRateLimit(1000))

	places, err := c.Search(context.Background(), "cafes berlin", 10)
	require.NoError(t, err)
	assert.Equal(t, "test-agent/1.0", gotUA)

	// The entry with unparseable coordinates is skipped.
	require.Len(t, places, 1)
	p := places[0]
	assert.Equal(t, int64(12345), p.PlaceID)
	assert.Equal(t, "Blue Bottle Coffee, Berlin, Germany", p.DisplayName)
	assert.Equal(t, "cafe", p.Type)
	assert.Equal(t, 0.42, p.Importance)
	// Coordinates are lon/lat.
	assert.InDelta(t, 13.405, p.Location[0], 1e-9)
	assert.InDelta(t, 52.52, p.Location[1], 1e-9)
}

func TestSearch_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithRateLimit(1000))

	_, err := c.Search(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDistanceKM(t *testing.T) {
	berlin := geom.Coord{13.405, 52.52}
	paris := geom.Coord{2.3522, 48.8566}

	assert.Equal(t, 0.0, DistanceKM(berlin, berlin))
	// Berlin to Paris is roughly 878 km great-circle.
	assert.InDelta(t, 878, DistanceKM(berlin, paris), 10)
	// Symmetric.
	assert.InDelta(t, DistanceKM(berlin, paris), DistanceKM(paris, berlin), 1e-9)
}
