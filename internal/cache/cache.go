// Package cache provides the in-memory TTL cache for aggregation results.
package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/cases"

	"github.com/sells-group/unisearch/internal/model"
)

var fold = cases.Fold()

// Key builds the cache key for an aggregation: the entity type and the
// casefolded, trimmed query joined by a pipe.
func Key(entityType model.EntityType, query string) string {
	return string(entityType) + "|" + fold.String(strings.TrimSpace(query))
}

// ResultCache is a concurrent-safe TTL cache for aggregation results.
// Entries are immutable once written; expiry is lazy, checked on read
// only, with no background sweep.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[string]model.CacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	hits       atomic.Int64
	misses     atomic.Int64
}

// Stats contains cache performance counters.
type Stats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// New creates a ResultCache with the given TTL. maxEntries bounds memory;
// zero means unbounded.
func New(ttl time.Duration, maxEntries int) *ResultCache {
	return &ResultCache{
		entries:    make(map[string]model.CacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// WithNow sets a fixed clock for testing.
func (c *ResultCache) WithNow(now func() time.Time) *ResultCache {
	c.now = now
	return c
}

// Get returns the cached records for key, or (nil, false) on miss or
// expiry. Expired entries are deleted on read.
func (c *ResultCache) Get(key string) ([]model.UniversalRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if c.now().Sub(entry.Timestamp) > c.ttl {
		delete(c.entries, key)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return entry.Records, true
}

// Put stores records under key with the current timestamp. When the cache
// is at capacity the oldest entry is evicted first.
func (c *ResultCache) Put(key string, records []model.UniversalRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 {
		for len(c.entries) >= c.maxEntries {
			oldestKey := ""
			var oldest time.Time
			for k, e := range c.entries {
				if oldestKey == "" || e.Timestamp.Before(oldest) {
					oldestKey, oldest = k, e.Timestamp
				}
			}
			if oldestKey == "" {
				break
			}
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = model.CacheEntry{
		Timestamp: c.now(),
		Records:   records,
	}
}

// Stats returns cache performance counters.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	entries := len(c.entries)
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{Entries: entries, Hits: hits, Misses: misses, HitRate: hitRate}
}
