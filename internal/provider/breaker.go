package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/unisearch/internal/model"
	"github.com/sells-group/unisearch/internal/registry"
)

const (
	defaultTripThreshold = 5
	defaultCooldown      = 30 * time.Second
)

// ErrProviderOpen is returned while a provider's breaker is open.
var ErrProviderOpen = eris.New("provider: circuit open")

// Breaker wraps a provider with a circuit breaker. After a run of
// consecutive fetch failures the provider is skipped outright until a
// cooldown elapses; the next fetch after the cooldown is the probe that
// either closes the circuit again or re-opens it.
type Breaker struct {
	inner     registry.Provider
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	failures int
	open     bool
	openedAt time.Time
}

// WithBreaker wraps p with default trip settings.
func WithBreaker(p registry.Provider) *Breaker {
	return &Breaker{
		inner:     p,
		threshold: defaultTripThreshold,
		cooldown:  defaultCooldown,
		now:       time.Now,
	}
}

// WithTripSettings overrides the failure threshold and cooldown.
func (b *Breaker) WithTripSettings(threshold int, cooldown time.Duration) *Breaker {
	if threshold > 0 {
		b.threshold = threshold
	}
	if cooldown > 0 {
		b.cooldown = cooldown
	}
	return b
}

func (b *Breaker) Name() string { return b.inner.Name() }

func (b *Breaker) Supports() []model.EntityType { return b.inner.Supports() }

// Fetch delegates to the wrapped provider unless the circuit is open.
func (b *Breaker) Fetch(ctx context.Context, q registry.Query) ([]model.UniversalRecord, error) {
	if !b.allow() {
		return nil, eris.Wrap(ErrProviderOpen, b.inner.Name())
	}

	records, err := b.inner.Fetch(ctx, q)
	b.record(err)
	return records, err
}

// Open reports whether the circuit is currently rejecting fetches.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open && b.now().Sub(b.openedAt) < b.cooldown
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return true
	}
	// Past the cooldown the next fetch goes through as a probe.
	return b.now().Sub(b.openedAt) >= b.cooldown
}

func (b *Breaker) record(err error) {
	// A cancelled caller says nothing about provider health.
	if errors.Is(err, context.Canceled) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.open {
			zap.L().Info("provider: circuit closed",
				zap.String("provider", b.inner.Name()),
			)
		}
		b.failures = 0
		b.open = false
		return
	}

	b.failures++
	if b.failures >= b.threshold {
		if !b.open {
			zap.L().Warn("provider: circuit opened",
				zap.String("provider", b.inner.Name()),
				zap.Int("consecutive_failures", b.failures),
			)
		}
		b.open = true
		b.openedAt = b.now()
	}
}
