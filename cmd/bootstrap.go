package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/unisearch/internal/cache"
	"github.com/sells-group/unisearch/internal/config"
	"github.com/sells-group/unisearch/internal/enrich"
	"github.com/sells-group/unisearch/internal/intent"
	"github.com/sells-group/unisearch/internal/provider"
	"github.com/sells-group/unisearch/internal/registry"
	"github.com/sells-group/unisearch/internal/score"
	"github.com/sells-group/unisearch/internal/search"
	"github.com/sells-group/unisearch/pkg/arxiv"
	"github.com/sells-group/unisearch/pkg/githubsearch"
	"github.com/sells-group/unisearch/pkg/hfhub"
	"github.com/sells-group/unisearch/pkg/llm"
	"github.com/sells-group/unisearch/pkg/nominatim"
	"github.com/sells-group/unisearch/pkg/openalex"
)

// env holds the wired aggregation environment for one process.
type env struct {
	Aggregator *search.Aggregator
	Queue      *enrich.Queue
}

// Close shuts down background work.
func (e *env) Close() {
	e.Queue.Close()
}

// initEnv wires providers, parser, cache, scorer, and the enrichment
// queue from configuration.
func initEnv(cfg *config.Config) (*env, error) {
	rules := intent.DefaultRules()
	if cfg.Intent.RulesPath != "" {
		loaded, err := intent.LoadRules(cfg.Intent.RulesPath)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}

	parser := intent.NewParser(rules)
	if cfg.Intent.AnthropicKey != "" {
		parser = parser.WithClassifier(
			llm.NewClient(cfg.Intent.AnthropicKey),
			cfg.Intent.Model,
			time.Duration(cfg.Intent.TimeoutSecs)*time.Second,
		)
	} else {
		zap.L().Info("bootstrap: no classifier key configured, using heuristic intent only")
	}

	reg := registry.New()
	reg.Register(provider.WithBreaker(provider.NewGitHub(githubsearch.NewClient(cfg.GitHub.Token,
		githubsearch.WithBaseURL(cfg.GitHub.BaseURL),
		githubsearch.WithRateLimit(cfg.GitHub.RPS),
	))))
	reg.Register(provider.WithBreaker(provider.NewOpenAlex(openalex.NewClient(
		openalex.WithBaseURL(cfg.OpenAlex.BaseURL),
		openalex.WithMailto(cfg.OpenAlex.Mailto),
		openalex.WithRateLimit(cfg.OpenAlex.RPS),
	))))
	reg.Register(provider.WithBreaker(provider.NewArXiv(arxiv.NewClient(
		arxiv.WithBaseURL(cfg.ArXiv.BaseURL),
	))))
	reg.Register(provider.WithBreaker(provider.NewPlaces(nominatim.NewClient(
		nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
		nominatim.WithUserAgent(cfg.Nominatim.UserAgent),
		nominatim.WithRateLimit(cfg.Nominatim.RPS),
	))))
	reg.Register(provider.WithBreaker(provider.NewDatasets(hfhub.NewClient(cfg.HFHub.Token,
		hfhub.WithBaseURL(cfg.HFHub.BaseURL),
		hfhub.WithRateLimit(cfg.HFHub.RPS),
	))))

	queue := enrich.NewQueue(rules.Skills).
		WithYield(time.Duration(cfg.Enrich.YieldMS) * time.Millisecond)

	agg := search.New(
		parser,
		reg,
		cache.New(cfg.Cache.TTL(), cfg.Cache.MaxEntries),
		score.New(cfg.Scoring),
		queue,
		search.Config{
			PerProviderLimit: cfg.Search.PerProviderLimit,
			ProviderTimeout:  time.Duration(cfg.Search.ProviderTimeoutSecs) * time.Second,
		},
	)

	zap.L().Info("bootstrap: environment ready",
		zap.Int("providers", reg.Len()),
	)

	return &env{Aggregator: agg, Queue: queue}, nil
}
