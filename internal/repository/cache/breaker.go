package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
)

// consecutive backend failures before the breaker opens
const breakerFailureThreshold = 5

// BreakerStore guards a Store with a circuit breaker so that an unreachable
// backend fails fast instead of adding its timeout to every request.
type BreakerStore struct {
	store   Store
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps store. timeout is how long the breaker stays open
// before letting a probe through.
func NewBreakerStore(store Store, timeout time.Duration, log *logger.Logger) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        "cache",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		// a miss is a healthy answer
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Cache circuit breaker state changed")
		},
	}

	return &BreakerStore{
		store:   store,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Get retrieves a cached value through the breaker
func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	res, err := b.breaker.Execute(func() (any, error) {
		return b.store.Get(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

// Set stores a value through the breaker
func (b *BreakerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.store.Set(ctx, key, value, ttl)
	})
	return err
}

// Delete removes keys through the breaker
func (b *BreakerStore) Delete(ctx context.Context, keys ...string) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.store.Delete(ctx, keys...)
	})
	return err
}

// State reports the breaker state
func (b *BreakerStore) State() gobreaker.State {
	return b.breaker.State()
}

// Close closes the wrapped store
func (b *BreakerStore) Close() error {
	return b.store.Close()
}
