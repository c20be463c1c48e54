package provider

import (
	"context"
	"fmt"
	"math"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/unisearch/internal/model"
	"github.com/sells-group/unisearch/internal/registry"
	"github.com/sells-group/unisearch/pkg/nominatim"
)

// Places surfaces OpenStreetMap search results as place records. When the
// request carries a geo hint, each record gets a distance_km attribute that
// feeds proximity scoring.
type Places struct {
	client nominatim.Client
}

// NewPlaces creates the places provider.
func NewPlaces(client nominatim.Client) *Places {
	return &Places{client: client}
}

func (p *Places) Name() string { return "places" }

func (p *Places) Supports() []model.EntityType {
	return []model.EntityType{model.EntityPlaces, model.EntityEvents}
}

func (p *Places) Fetch(ctx context.Context, q registry.Query) ([]model.UniversalRecord, error) {
	text := q.Text
	if q.Filters.Location != "" {
		text = q.Text + " " + q.Filters.Location
	}

	places, err := p.client.Search(ctx, text, q.Limit)
	if err != nil {
		return nil, err
	}

	records := make([]model.UniversalRecord, 0, len(places))
	for _, pl := range places {
		attrs := map[string]model.AttrValue{
			"category": model.Str(pl.Category),
			"type":     model.Str(pl.Type),
		}
		if q.HasGeo {
			dist := nominatim.DistanceKM(geom.Coord{q.Lon, q.Lat}, pl.Location)
			attrs["distance_km"] = model.Num(math.Round(dist*10) / 10)
		}

		records = append(records, model.UniversalRecord{
			ID:         fmt.Sprintf("osm:%d", pl.PlaceID),
			Name:       pl.DisplayName,
			Headline:   pl.Category + "/" + pl.Type,
			URL:        fmt.Sprintf("https://www.openstreetmap.org/?mlat=%f&mlon=%f", pl.Location[1], pl.Location[0]),
			Location:   pl.DisplayName,
			Provider:   p.Name(),
			Attributes: attrs,
			Metrics:    map[string]float64{"importance": pl.Importance},
		})
	}
	return records, nil
}
