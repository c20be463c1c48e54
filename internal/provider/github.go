// Package provider adapts external API clients to the registry's Provider
// contract, normalizing every response into UniversalRecord.
package provider

import (
	"context"
	"strings"

	"github.com/sells-group/unisearch/internal/model"
	"github.com/sells-group/unisearch/internal/registry"
	"github.com/sells-group/unisearch/pkg/githubsearch"
)

// GitHub surfaces code-host user profiles as people records.
type GitHub struct {
	client githubsearch.Client
}

// NewGitHub creates the GitHub provider.
func NewGitHub(client githubsearch.Client) *GitHub {
	return &GitHub{client: client}
}

func (p *GitHub) Name() string { return "github" }

func (p *GitHub) Supports() []model.EntityType {
	return []model.EntityType{model.EntityPeople}
}

func (p *GitHub) Fetch(ctx context.Context, q registry.Query) ([]model.UniversalRecord, error) {
	users, err := p.client.SearchUsers(ctx, q.Text, q.Limit)
	if err != nil {
		return nil, err
	}

	records := make([]model.UniversalRecord, 0, len(users))
	for _, u := range users {
		name := u.Name
		if name == "" {
			name = u.Login
		}

		attrs := map[string]model.AttrValue{
			"repos": model.Num(float64(u.PublicRepos)),
		}
		if company := strings.TrimPrefix(u.Company, "@"); company != "" {
			attrs["company"] = model.Str(company)
		}

		records = append(records, model.UniversalRecord{
			ID:         "github:" + u.Login,
			Name:       name,
			Headline:   u.Bio,
			URL:        u.HTMLURL,
			Location:   u.Location,
			Provider:   p.Name(),
			Attributes: attrs,
			Metrics:    map[string]float64{"followers": float64(u.Followers)},
		})
	}
	return records, nil
}
