// Package search runs the aggregation pipeline: intent classification,
// concurrent provider fan-out, caching, dedup, column inference, scoring,
// and incremental event streaming.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/unisearch/internal/cache"
	"github.com/sells-group/unisearch/internal/enrich"
	"github.com/sells-group/unisearch/internal/intent"
	"github.com/sells-group/unisearch/internal/model"
	"github.com/sells-group/unisearch/internal/registry"
	"github.com/sells-group/unisearch/internal/score"
)

// Config holds per-aggregation tunables.
type Config struct {
	// PerProviderLimit caps records requested from each provider.
	PerProviderLimit int
	// ProviderTimeout bounds each provider fetch. An unresponsive provider
	// delays only its own records, never the others.
	ProviderTimeout time.Duration
}

// Request is one aggregation call.
type Request struct {
	Query    string
	Lat, Lon float64
	HasGeo   bool
}

// Aggregator ties the pipeline together. The cache and enrichment queue
// are injected so independent instances (and tests) get clean lifecycles.
type Aggregator struct {
	parser   *intent.Parser
	registry *registry.Registry
	cache    *cache.ResultCache
	scorer   *score.Scorer
	queue    *enrich.Queue
	cfg      Config
}

// New creates an Aggregator.
func New(parser *intent.Parser, reg *registry.Registry, rc *cache.ResultCache, sc *score.Scorer, queue *enrich.Queue, cfg Config) *Aggregator {
	if cfg.PerProviderLimit <= 0 {
		cfg.PerProviderLimit = 10
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 10 * time.Second
	}
	return &Aggregator{
		parser:   parser,
		registry: reg,
		cache:    rc,
		scorer:   sc,
		queue:    queue,
		cfg:      cfg,
	}
}

// Queue exposes the enrichment queue, whose hub carries update events.
func (a *Aggregator) Queue() *enrich.Queue { return a.queue }

// CacheStats exposes cache counters for the ops surface.
func (a *Aggregator) CacheStats() cache.Stats { return a.cache.Stats() }

// Providers returns the number of registered providers.
func (a *Aggregator) Providers() int { return a.registry.Len() }

// Stream runs one aggregation and emits its events on the returned
// channel, which closes after the terminal event. If ctx is cancelled the
// stream stops emitting; in-flight provider calls are simply dropped.
func (a *Aggregator) Stream(ctx context.Context, req Request) <-chan Event {
	ch := make(chan Event, 32)
	go func() {
		defer close(ch)
		a.run(ctx, req, ch)
	}()
	return ch
}

func (a *Aggregator) run(ctx context.Context, req Request, ch chan<- Event) {
	emit := func(name string, data any) bool {
		select {
		case ch <- Event{Name: name, Data: data}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		emit(EventError, ErrorPayload{Error: "query is required"})
		return
	}

	requestID := uuid.NewString()
	started := time.Now()
	emit(EventInit, InitPayload{Q: req.Query})

	it := a.parser.Parse(ctx, query)
	emit(EventIntent, it)

	providers := a.registry.Match(it.EntityType)
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	emit(EventProviders, ProvidersPayload{Count: len(providers), Names: names})

	zap.L().Info("search: aggregation started",
		zap.String("request_id", requestID),
		zap.String("query", query),
		zap.String("entity_type", string(it.EntityType)),
		zap.Int("providers", len(providers)),
	)

	key := cache.Key(it.EntityType, query)
	if cached, ok := a.cache.Get(key); ok {
		// Cached replay: no provider calls, no enrichment enqueue.
		emit(EventCached, CachedPayload{Total: len(cached)})
		emit(EventColumns, ColumnsPayload{Columns: PickColumns(cached)})
		for _, rec := range cached {
			if !emit(EventRecord, rec) {
				return
			}
		}
		emit(EventDone, DonePayload{Total: len(cached), Cached: true})
		return
	}

	// The fixed schema goes out before any record so clients can render
	// an empty table immediately.
	emit(EventColumns, ColumnsPayload{Columns: PickColumns(nil)})

	// Fan out to every matched provider, width bounded only by the
	// provider count. Each provider is isolated: failures contribute zero
	// records and never abort the overall call, so the closures collect
	// outcomes instead of returning errors.
	var (
		mu       sync.Mutex
		gathered []model.UniversalRecord
	)
	g := new(errgroup.Group)

	for _, p := range providers {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, a.cfg.ProviderTimeout)
			defer cancel()

			records, err := p.Fetch(pctx, registry.Query{
				Text:    query,
				Limit:   a.cfg.PerProviderLimit,
				Filters: it.Filters,
				Lat:     req.Lat,
				Lon:     req.Lon,
				HasGeo:  req.HasGeo,
			})
			if err != nil {
				zap.L().Warn("search: provider fetch failed",
					zap.String("request_id", requestID),
					zap.String("provider", p.Name()),
					zap.Error(err),
				)
				records = nil
			}

			for _, rec := range records {
				rec.Score = a.scorer.Score(rec)
				mu.Lock()
				gathered = append(gathered, rec)
				mu.Unlock()
				if !emit(EventRecord, rec) {
					return nil
				}
				a.queue.Enqueue(rec)
			}

			// Columns evolve with the cumulative record set, one update
			// per provider completion.
			mu.Lock()
			snapshot := make([]model.UniversalRecord, len(gathered))
			copy(snapshot, gathered)
			mu.Unlock()
			emit(EventColumns, ColumnsPayload{Columns: PickColumns(snapshot)})
			return nil
		})
	}
	_ = g.Wait()

	deduped := Dedupe(gathered)
	if ctx.Err() != nil {
		// Client went away mid-flight; a partial result set must not
		// poison the cache.
		return
	}
	a.cache.Put(key, deduped)

	zap.L().Info("search: aggregation complete",
		zap.String("request_id", requestID),
		zap.Int("records", len(deduped)),
		zap.Duration("elapsed", time.Since(started)),
	)

	emit(EventDone, DonePayload{Total: len(deduped), Cached: false})
}
