// Package registry defines the provider contract and the static provider registry.
package registry

import (
	"context"
	"sync"

	"github.com/sells-group/unisearch/internal/model"
)

// Query is the request a provider receives for one fetch.
type Query struct {
	Text    string
	Limit   int
	Filters model.Filters
	// Lat/Lon carry the caller's geo hint; zero when absent.
	Lat, Lon float64
	HasGeo   bool
}

// Provider is an external data source with a uniform fetch contract.
// Providers are untrusted: they may be slow, fail, or return malformed
// data, and the orchestrator isolates each of them.
type Provider interface {
	// Name returns the provider identifier used in logs and events.
	Name() string
	// Supports returns the entity types this provider can serve.
	Supports() []model.EntityType
	// Fetch returns normalized records for the query.
	Fetch(ctx context.Context, q Query) ([]model.UniversalRecord, error)
}

// Registry holds the static provider list. Providers register once at
// process start; the registry carries no per-request state.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register appends a provider.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
}

// All returns every registered provider in registration order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Match returns the providers that declare support for the entity type,
// in registration order.
func (r *Registry) Match(t model.EntityType) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Provider
	for _, p := range r.providers {
		for _, s := range p.Supports() {
			if s == t {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
