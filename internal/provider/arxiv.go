package provider

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/unisearch/internal/model"
	"github.com/sells-group/unisearch/internal/registry"
	"github.com/sells-group/unisearch/pkg/arxiv"
)

// ArXiv collates preprint authors into people records. Authors appearing
// on several matching preprints collapse into one record with a paper
// count metric.
type ArXiv struct {
	client arxiv.Client
	fold   cases.Caser
}

// NewArXiv creates the arXiv provider.
func NewArXiv(client arxiv.Client) *ArXiv {
	return &ArXiv{client: client, fold: cases.Fold()}
}

func (p *ArXiv) Name() string { return "arxiv" }

func (p *ArXiv) Supports() []model.EntityType {
	return []model.EntityType{model.EntityPeople}
}

func (p *ArXiv) Fetch(ctx context.Context, q registry.Query) ([]model.UniversalRecord, error) {
	entries, err := p.client.Search(ctx, q.Text, q.Limit)
	if err != nil {
		return nil, err
	}

	// Collate by author across preprints, keeping entry order for the
	// first appearance.
	byAuthor := make(map[string]*model.UniversalRecord)
	var order []string
	for _, e := range entries {
		title := strings.Join(strings.Fields(e.Title), " ")
		for _, a := range e.Authors {
			key := p.fold.String(a.Name)
			if rec, ok := byAuthor[key]; ok {
				rec.Metrics["papers"]++
				continue
			}

			attrs := map[string]model.AttrValue{}
			if len(e.Categories) > 0 {
				terms := make([]string, 0, len(e.Categories))
				for _, c := range e.Categories {
					terms = append(terms, c.Term)
				}
				attrs["categories"] = model.List(terms...)
			}

			// No per-author canonical URL exists; the entry link points at
			// the paper and would collapse co-authors under one dedup key.
			byAuthor[key] = &model.UniversalRecord{
				ID:         "arxiv:" + key,
				Name:       a.Name,
				Headline:   "Author of " + title,
				Provider:   p.Name(),
				Attributes: attrs,
				Metrics:    map[string]float64{"papers": 1},
			}
			order = append(order, key)
		}
	}

	records := make([]model.UniversalRecord, 0, len(order))
	for _, key := range order {
		records = append(records, *byAuthor[key])
	}
	if q.Limit > 0 && len(records) > q.Limit {
		records = records[:q.Limit]
	}
	return records, nil
}
