package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore implements Store on an in-process go-cache instance
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore wraps an existing go-cache instance
func NewMemoryStore(c *gocache.Cache) *MemoryStore {
	return &MemoryStore{cache: c}
}

// Get retrieves a cached value
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrMiss
	}

	data, ok := val.([]byte)
	if !ok {
		return nil, ErrMiss
	}
	return data, nil
}

// Set stores a copy of value. A zero ttl uses the cache default.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}

	data := make([]byte, len(value))
	copy(data, value)
	s.cache.Set(key, data, ttl)
	return nil
}

// Delete removes keys
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s.cache.Delete(key)
	}
	return nil
}

// Close drops every entry
func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}
