package provider

import (
	"context"

	"github.com/sells-group/unisearch/internal/model"
	"github.com/sells-group/unisearch/internal/registry"
	"github.com/sells-group/unisearch/pkg/openalex"
)

// OpenAlex surfaces academic authors as people records.
type OpenAlex struct {
	client openalex.Client
}

// NewOpenAlex creates the OpenAlex provider.
func NewOpenAlex(client openalex.Client) *OpenAlex {
	return &OpenAlex{client: client}
}

func (p *OpenAlex) Name() string { return "openalex" }

func (p *OpenAlex) Supports() []model.EntityType {
	return []model.EntityType{model.EntityPeople}
}

func (p *OpenAlex) Fetch(ctx context.Context, q registry.Query) ([]model.UniversalRecord, error) {
	authors, err := p.client.SearchAuthors(ctx, q.Text, q.Limit)
	if err != nil {
		return nil, err
	}

	records := make([]model.UniversalRecord, 0, len(authors))
	for _, a := range authors {
		url := a.ORCID
		if url == "" {
			url = a.ID
		}

		attrs := map[string]model.AttrValue{}
		if a.Institution != "" {
			attrs["affiliation"] = model.Str(a.Institution)
		}

		headline := ""
		if a.Institution != "" {
			headline = "Researcher at " + a.Institution
		}

		records = append(records, model.UniversalRecord{
			ID:         a.ID,
			Name:       a.DisplayName,
			Headline:   headline,
			URL:        url,
			Location:   a.Country,
			Provider:   p.Name(),
			Attributes: attrs,
			Metrics: map[string]float64{
				"citations": float64(a.CitedCount),
				"works":     float64(a.WorksCount),
			},
		})
	}
	return records, nil
}
