package provider

import (
	"context"
	"strings"

	"github.com/sells-group/unisearch/internal/model"
	"github.com/sells-group/unisearch/internal/registry"
	"github.com/sells-group/unisearch/pkg/hfhub"
)

// Datasets surfaces Hugging Face Hub datasets as dataset records. Hub
// likes map onto the stars authority metric.
type Datasets struct {
	client hfhub.Client
}

// NewDatasets creates the datasets provider.
func NewDatasets(client hfhub.Client) *Datasets {
	return &Datasets{client: client}
}

func (p *Datasets) Name() string { return "datasets" }

func (p *Datasets) Supports() []model.EntityType {
	return []model.EntityType{model.EntityDatasets}
}

func (p *Datasets) Fetch(ctx context.Context, q registry.Query) ([]model.UniversalRecord, error) {
	datasets, err := p.client.SearchDatasets(ctx, q.Text, q.Limit)
	if err != nil {
		return nil, err
	}

	records := make([]model.UniversalRecord, 0, len(datasets))
	for _, d := range datasets {
		name := d.ID
		if idx := strings.Index(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}

		attrs := map[string]model.AttrValue{}
		if d.Author != "" {
			attrs["author"] = model.Str(d.Author)
		}
		if len(d.Tags) > 0 {
			attrs["tags"] = model.List(d.Tags...)
		}
		if d.LastModified != "" {
			attrs["updated"] = model.Str(d.LastModified)
		}

		records = append(records, model.UniversalRecord{
			ID:         "hf:" + d.ID,
			Name:       name,
			Headline:   strings.Join(firstN(d.Tags, 4), ", "),
			URL:        "https://huggingface.co/datasets/" + d.ID,
			Provider:   p.Name(),
			Attributes: attrs,
			Metrics: map[string]float64{
				"stars":     float64(d.Likes),
				"downloads": float64(d.Downloads),
			},
		})
	}
	return records, nil
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
