package search

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/unisearch/internal/cache"
	"github.com/sells-group/unisearch/internal/enrich"
	"github.com/sells-group/unisearch/internal/intent"
	"github.com/sells-group/unisearch/internal/model"
	"github.com/sells-group/unisearch/internal/registry"
	"github.com/sells-group/unisearch/internal/score"
)

type mockProvider struct {
	name     string
	supports []model.EntityType
	records  []model.UniversalRecord
	err      error
	delay    time.Duration
	calls    atomic.Int64
}

func (m *mockProvider) Name() string                 { return m.name }
func (m *mockProvider) Supports() []model.EntityType { return m.supports }

func (m *mockProvider) Fetch(ctx context.Context, _ registry.Query) ([]model.UniversalRecord, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func peopleRecords(ids ...string) []model.UniversalRecord {
	out := make([]model.UniversalRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.UniversalRecord{
			ID:       id,
			Name:     "Person " + id,
			Headline: "engineer",
			URL:      "https://example.com/" + id,
		})
	}
	return out
}

func newTestAggregator(t *testing.T, providers ...registry.Provider) *Aggregator {
	t.Helper()
	reg := registry.New()
	for _, p := range providers {
		reg.Register(p)
	}
	queue := enrich.NewQueue(nil).WithYield(time.Millisecond)
	t.Cleanup(queue.Close)
	return New(
		intent.NewParser(intent.DefaultRules()),
		reg,
		cache.New(time.Minute, 0),
		score.New(score.DefaultConfig()),
		queue,
		Config{},
	)
}

func drain(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("stream did not close")
		}
	}
}

func eventNames(events []Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Name
	}
	return out
}

func lastEvent(t *testing.T, events []Event, name string) Event {
	t.Helper()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Name == name {
			return events[i]
		}
	}
	t.Fatalf("no %q event in %v", name, eventNames(events))
	return Event{}
}

func TestStream_EmptyQuery(t *testing.T) {
	agg := newTestAggregator(t)

	events := drain(t, agg.Stream(context.Background(), Request{Query: "  "}))
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Name)
	assert.Equal(t, "query is required", events[0].Data.(ErrorPayload).Error)
}

func TestStream_EventOrder(t *testing.T) {
	p := &mockProvider{
		name:     "mock",
		supports: []model.EntityType{model.EntityPeople},
		records:  peopleRecords("a", "b"),
	}
	agg := newTestAggregator(t, p)

	events := drain(t, agg.Stream(context.Background(), Request{Query: "rust developers"}))
	names := eventNames(events)
	assert.Equal(t, []string{"init", "intent", "providers", "columns", "record", "record", "columns", "done"}, names)

	assert.Equal(t, "rust developers", events[0].Data.(InitPayload).Q)
	assert.Equal(t, model.EntityPeople, events[1].Data.(model.Intent).EntityType)

	providersOut := events[2].Data.(ProvidersPayload)
	assert.Equal(t, 1, providersOut.Count)
	assert.Equal(t, []string{"mock"}, providersOut.Names)

	done := lastEvent(t, events, EventDone).Data.(DonePayload)
	assert.Equal(t, 2, done.Total)
	assert.False(t, done.Cached)
}

func TestStream_RecordsAreScored(t *testing.T) {
	p := &mockProvider{
		name:     "mock",
		supports: []model.EntityType{model.EntityPeople},
		records:  peopleRecords("a"),
	}
	agg := newTestAggregator(t, p)

	events := drain(t, agg.Stream(context.Background(), Request{Query: "rust developers"}))
	rec := lastEvent(t, events, EventRecord).Data.(model.UniversalRecord)
	assert.Equal(t, 0.6, rec.Score)
}

func TestStream_ProviderFailureIsolated(t *testing.T) {
	failing := &mockProvider{
		name:     "broken",
		supports: []model.EntityType{model.EntityPeople},
		err:      eris.New("upstream 500"),
	}
	healthy := &mockProvider{
		name:     "healthy",
		supports: []model.EntityType{model.EntityPeople},
		records:  peopleRecords("1", "2", "3", "4", "5"),
	}
	agg := newTestAggregator(t, failing, healthy)

	events := drain(t, agg.Stream(context.Background(), Request{Query: "rust developers"}))

	done := lastEvent(t, events, EventDone).Data.(DonePayload)
	assert.Equal(t, 5, done.Total)
	for _, ev := range events {
		assert.NotEqual(t, EventError, ev.Name)
	}
}

func TestStream_NoProvidersStillCompletes(t *testing.T) {
	agg := newTestAggregator(t)

	events := drain(t, agg.Stream(context.Background(), Request{Query: "rust developers"}))
	names := eventNames(events)
	assert.Equal(t, []string{"init", "intent", "providers", "columns", "done"}, names)
	assert.Equal(t, 0, lastEvent(t, events, EventDone).Data.(DonePayload).Total)
}

func TestStream_DuplicatesCollapseInDone(t *testing.T) {
	a := &mockProvider{
		name:     "a",
		supports: []model.EntityType{model.EntityPeople},
		records: []model.UniversalRecord{
			{ID: "a:1", Name: "Ada", URL: "https://example.com/Ada"},
		},
	}
	b := &mockProvider{
		name:     "b",
		supports: []model.EntityType{model.EntityPeople},
		delay:    20 * time.Millisecond,
		records: []model.UniversalRecord{
			{ID: "b:1", Name: "Ada", URL: "https://example.com/ada"},
		},
	}
	agg := newTestAggregator(t, a, b)

	events := drain(t, agg.Stream(context.Background(), Request{Query: "rust developers"}))

	// Both records stream live, but the deduped total counts one.
	records := 0
	for _, ev := range events {
		if ev.Name == EventRecord {
			records++
		}
	}
	assert.Equal(t, 2, records)
	assert.Equal(t, 1, lastEvent(t, events, EventDone).Data.(DonePayload).Total)
}

func TestStream_SecondCallServedFromCache(t *testing.T) {
	p := &mockProvider{
		name:     "mock",
		supports: []model.EntityType{model.EntityPeople},
		records:  peopleRecords("a", "b"),
	}
	agg := newTestAggregator(t, p)

	first := drain(t, agg.Stream(context.Background(), Request{Query: "Rust Developers"}))
	require.False(t, lastEvent(t, first, EventDone).Data.(DonePayload).Cached)
	require.Equal(t, int64(1), p.calls.Load())

	// Same query modulo case and whitespace hits the cache.
	second := drain(t, agg.Stream(context.Background(), Request{Query: "  rust developers "}))
	assert.Equal(t, int64(1), p.calls.Load())

	names := eventNames(second)
	assert.Equal(t, []string{"init", "intent", "providers", "cached", "columns", "record", "record", "done"}, names)

	done := lastEvent(t, second, EventDone).Data.(DonePayload)
	assert.True(t, done.Cached)
	assert.Equal(t, 2, done.Total)

	// Replayed records carry their original scores.
	rec := lastEvent(t, second, EventRecord).Data.(model.UniversalRecord)
	assert.Equal(t, 0.6, rec.Score)
}

func TestStream_CancelledContextStopsStream(t *testing.T) {
	p := &mockProvider{
		name:     "slow",
		supports: []model.EntityType{model.EntityPeople},
		delay:    5 * time.Second,
		records:  peopleRecords("a"),
	}
	agg := newTestAggregator(t, p)

	ctx, cancel := context.WithCancel(context.Background())
	ch := agg.Stream(ctx, Request{Query: "rust developers"})
	cancel()

	events := drain(t, ch)
	// The stream closes without a done event and nothing was cached.
	for _, ev := range events {
		assert.NotEqual(t, EventDone, ev.Name)
	}
	assert.Equal(t, 0, agg.CacheStats().Entries)
}
