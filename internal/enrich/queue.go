// Package enrich runs the background enrichment queue: a process-wide,
// single-consumer FIFO that augments already-streamed records with derived
// skill tags and broadcasts the resulting patches.
package enrich

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/unisearch/internal/model"
)

const defaultYield = 25 * time.Millisecond

// Queue is the enrichment work queue. The drain loop starts lazily on the
// first enqueue, processes one item at a time in FIFO order, and goes idle
// when the queue empties. Enrichment never mutates a record's score and
// never re-emits a whole record: only patches leave through the hub.
type Queue struct {
	mu       sync.Mutex
	items    []model.UniversalRecord
	draining bool
	closed   bool

	skills []string
	yield  time.Duration
	hub    *Hub
	wg     sync.WaitGroup
}

// NewQueue creates a Queue tagging against the given skills vocabulary.
func NewQueue(skills []string) *Queue {
	return &Queue{
		skills: skills,
		yield:  defaultYield,
		hub:    NewHub(),
	}
}

// WithYield sets the pause between items, keeping the drain loop from
// starving other work.
func (q *Queue) WithYield(d time.Duration) *Queue {
	if d > 0 {
		q.yield = d
	}
	return q
}

// Hub returns the broadcast hub for patch subscriptions.
func (q *Queue) Hub() *Hub { return q.hub }

// Enqueue schedules a record for background enrichment. The record is
// copied; later enqueues never observe caller mutations.
func (q *Queue) Enqueue(rec model.UniversalRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, rec)
	if !q.draining {
		q.draining = true
		q.wg.Add(1)
		go q.drain()
	}
}

// Pending returns the current queue depth.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting work, waits for the drain loop to go idle, and
// closes all hub subscriptions.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wg.Wait()
	q.hub.close()
}

func (q *Queue) drain() {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		if q.closed || len(q.items) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		item := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		q.process(item)
		time.Sleep(q.yield)
	}
}

// process derives skill tags for one record and publishes a patch when
// anything new was found. A record that yields nothing produces no event.
func (q *Queue) process(rec model.UniversalRecord) {
	var company string
	if v, ok := rec.Attributes["company"]; ok {
		company = v.String()
	}
	haystack := strings.ToLower(rec.Headline + " " + company)
	if strings.TrimSpace(haystack) == "" {
		return
	}

	existing := map[string]bool{}
	merged := []string{}
	if v, ok := rec.Attributes["skills"]; ok {
		for _, s := range v.Strings() {
			existing[strings.ToLower(s)] = true
			merged = append(merged, s)
		}
	}

	found := 0
	for _, kw := range q.skills {
		if !strings.Contains(haystack, kw) {
			continue
		}
		if existing[strings.ToLower(kw)] {
			continue
		}
		merged = append(merged, kw)
		found++
	}
	if found == 0 {
		return
	}

	zap.L().Debug("enrich: tagged record",
		zap.String("id", rec.ID),
		zap.Int("new_skills", found),
	)

	q.hub.Publish(model.EnrichmentPatch{
		ID: rec.ID,
		Patch: model.RecordPatch{
			Attributes: map[string]model.AttrValue{
				"skills": model.List(merged...),
			},
		},
	})
}
