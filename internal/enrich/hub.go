package enrich

import (
	"sync"

	"github.com/sells-group/unisearch/internal/model"
)

// Hub broadcasts enrichment patches to subscribers over per-subscriber
// buffered channels. Subscriber lifecycle is explicit so listeners never
// leak across requests; a subscriber that falls behind drops patches
// rather than blocking the drain loop.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan model.EnrichmentPatch
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan model.EnrichmentPatch)}
}

// Subscribe registers a listener. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan model.EnrichmentPatch, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan model.EnrichmentPatch, 64)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish delivers a patch to every subscriber, best-effort.
func (h *Hub) Publish(patch model.EnrichmentPatch) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- patch:
		default:
			// Full buffer: the subscriber is gone or stalled, drop.
		}
	}
}

// Subscribers returns the current listener count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// close shuts every subscriber channel. Called from Queue.Close.
func (h *Hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
