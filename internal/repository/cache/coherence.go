package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/pkg/metrics"
)

// epochTTL outlives any entry TTL; an expired epoch is recreated and only
// orphans entries that already expired
const epochTTL = 30 * 24 * time.Hour

// Coherence is the read-through cache used by the services.
//
// Every namespace has an epoch stored in the backend next to its entries and
// every entry is written under the current epoch. Replacing the epoch drops a
// whole namespace for every process sharing the backend, without scanning it.
// The in-process registry only tracks what this process wrote so the orphaned
// entries can be reclaimed early.
//
// Store failures are logged and counted, never returned: a broken cache
// degrades to direct store reads.
type Coherence struct {
	store Store
	log   *logger.Logger

	mu sync.Mutex
	// namespace -> logical key -> backend key
	registry map[string]map[string]string
	// bumped on every invalidation of a namespace or key; a value computed
	// across a bump is not kept in the backend
	generations map[string]uint64
}

// NewCoherence creates a cache layer over store
func NewCoherence(store Store, log *logger.Logger) *Coherence {
	return &Coherence{
		store:       store,
		log:         log,
		registry:    make(map[string]map[string]string),
		generations: make(map[string]uint64),
	}
}

// GetOrCompute returns the cached value for key, or calls fn, caches its
// result under namespace for ttl and returns it. Only errors from fn are
// returned.
func GetOrCompute[T any](ctx context.Context, c *Coherence, namespace, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	nsGen, keyGen := c.generation(namespace, key)

	epoch, err := c.epoch(ctx, namespace, true)
	if err != nil {
		c.log.With("namespace", namespace).Warnf("Cache epoch read failed: %v", err)
		metrics.RecordCacheLookup(namespace, "error")
		metrics.RecordCacheError("epoch")
		return fn(ctx)
	}
	stored := storageKey(namespace, epoch, key)

	if cached, ok := lookup[T](ctx, c, namespace, stored); ok {
		return cached, nil
	}

	value, err := fn(ctx)
	if err != nil {
		return value, err
	}

	c.put(ctx, namespace, key, stored, nsGen, keyGen, value, ttl)

	return value, nil
}

func lookup[T any](ctx context.Context, c *Coherence, namespace, stored string) (T, bool) {
	var cached T

	data, err := c.store.Get(ctx, stored)
	if err != nil {
		if errors.Is(err, ErrMiss) {
			metrics.RecordCacheLookup(namespace, "miss")
			return cached, false
		}
		c.log.With("key", stored).Warnf("Cache read failed: %v", err)
		metrics.RecordCacheLookup(namespace, "error")
		metrics.RecordCacheError("get")
		return cached, false
	}

	if err := json.Unmarshal(data, &cached); err != nil {
		c.log.With("key", stored).Warnf("Failed to decode cached value: %v", err)
		metrics.RecordCacheError("decode")
		return cached, false
	}

	metrics.RecordCacheLookup(namespace, "hit")
	return cached, true
}

func (c *Coherence) put(ctx context.Context, namespace, key, stored string, nsGen, keyGen uint64, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.With("key", key).Warnf("Failed to encode value for cache: %v", err)
		metrics.RecordCacheError("encode")
		return
	}

	if !c.current(namespace, key, nsGen, keyGen) {
		return
	}

	if err := c.store.Set(ctx, stored, data, ttl); err != nil {
		c.log.With("key", stored).Warnf("Cache write failed: %v", err)
		metrics.RecordCacheError("set")
		return
	}

	// an invalidation may have landed while the write was in flight
	c.mu.Lock()
	if c.generations[namespace] == nsGen && c.generations[key] == keyGen {
		keys, ok := c.registry[namespace]
		if !ok {
			keys = make(map[string]string)
			c.registry[namespace] = keys
		}
		keys[key] = stored
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if err := c.store.Delete(ctx, stored); err != nil {
		c.log.With("key", stored).Warnf("Failed to drop superseded cache entry: %v", err)
		metrics.RecordCacheError("delete")
	}
}

func (c *Coherence) generation(namespace, key string) (uint64, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[namespace], c.generations[key]
}

func (c *Coherence) current(namespace, key string, nsGen, keyGen uint64) bool {
	nowNS, nowKey := c.generation(namespace, key)
	return nowNS == nsGen && nowKey == keyGen
}

// epoch returns the current epoch of namespace, creating one when create is
// set and none exists
func (c *Coherence) epoch(ctx context.Context, namespace string, create bool) (string, error) {
	data, err := c.store.Get(ctx, epochKey(namespace))
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, ErrMiss) || !create {
		return "", err
	}

	epoch := uuid.NewString()
	if err := c.store.Set(ctx, epochKey(namespace), []byte(epoch), epochTTL); err != nil {
		return "", err
	}
	return epoch, nil
}

// Invalidate drops a whole namespace when namespaceOrKey has no ':',
// otherwise it deletes that single key.
func (c *Coherence) Invalidate(ctx context.Context, namespaceOrKey string) {
	namespace, _, isKey := strings.Cut(namespaceOrKey, ":")

	c.mu.Lock()
	c.generations[namespaceOrKey]++
	var toDelete []string
	if isKey {
		if stored, ok := c.registry[namespace][namespaceOrKey]; ok {
			delete(c.registry[namespace], namespaceOrKey)
			toDelete = append(toDelete, stored)
		}
	} else {
		keys := c.registry[namespaceOrKey]
		delete(c.registry, namespaceOrKey)
		toDelete = make([]string, 0, len(keys))
		for _, stored := range keys {
			toDelete = append(toDelete, stored)
		}
	}
	c.mu.Unlock()

	log := c.log.With("target", namespaceOrKey)

	if isKey {
		// the key may have been written by another process
		epoch, err := c.epoch(ctx, namespace, false)
		switch {
		case err == nil:
			toDelete = append(toDelete, storageKey(namespace, epoch, namespaceOrKey))
		case !errors.Is(err, ErrMiss):
			log.Warnf("Cache epoch read failed: %v", err)
			metrics.RecordCacheError("epoch")
		}
	} else {
		if err := c.store.Set(ctx, epochKey(namespaceOrKey), []byte(uuid.NewString()), epochTTL); err != nil {
			log.Warnf("Cache epoch rotation failed: %v", err)
			metrics.RecordCacheError("epoch")
			return
		}
		metrics.RecordInvalidation(namespaceOrKey, len(toDelete))
	}

	if len(toDelete) == 0 {
		return
	}

	if err := c.store.Delete(ctx, toDelete...); err != nil {
		log.Warnf("Cache invalidation failed: %v", err)
		metrics.RecordCacheError("delete")
	}
}

// TrackedKeys returns the number of keys this process wrote under namespace
// since its last invalidation
func (c *Coherence) TrackedKeys(namespace string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.registry[namespace])
}

// Close releases the backing store
func (c *Coherence) Close() error {
	c.mu.Lock()
	c.registry = make(map[string]map[string]string)
	c.mu.Unlock()

	return c.store.Close()
}

func epochKey(namespace string) string {
	return Key(namespace, "epoch")
}

// storageKey places the epoch right after the namespace prefix of key
func storageKey(namespace, epoch, key string) string {
	if rest, ok := strings.CutPrefix(key, namespace+":"); ok {
		return Key(namespace, epoch, rest)
	}
	return Key(namespace, epoch, key)
}
