// Package cache implements read-through caching with coarse, namespace-wide
// invalidation on top of a pluggable key/value store.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Store.Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

// Store is a byte-oriented key/value backend with per-key TTL
type Store interface {
	// Get returns the stored value or ErrMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Close releases the backend
	Close() error
}
