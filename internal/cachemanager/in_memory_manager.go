package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/container-kit/containerkit/internal/log"
)

// NoExpiration keeps entries until they are deleted or flushed.
const NoExpiration = gocache.NoExpiration

var _ CacheManager[string, string] = (*InMemoryCacheManager[string, string])(nil)

// InMemoryCacheManager implements CacheManager on go-cache.
type InMemoryCacheManager[K ~string, V any] struct {
	useCase string
	ttl     time.Duration
	cache   *gocache.Cache
}

// NewInMemoryCacheManager creates a cache whose entries live for ttl.
// NoExpiration disables expiry and the janitor goroutine.
func NewInMemoryCacheManager[K ~string, V any](useCase string, ttl time.Duration) *InMemoryCacheManager[K, V] {
	cleanup := time.Duration(0)
	if ttl > 0 {
		cleanup = 2 * ttl
	}
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		ttl:     ttl,
		cache:   gocache.New(ttl, cleanup),
	}
}

// Get returns the value stored under key.
func (c *InMemoryCacheManager[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zero V

	value, found := c.cache.Get(string(key))
	if !found {
		return zero, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "cache", c.useCase)
		return zero, false
	}
	return v, true
}

// Set stores value under key with the cache's ttl.
func (c *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V) {
	c.cache.Set(string(key), value, gocache.DefaultExpiration)
}

// Delete removes keys.
func (c *InMemoryCacheManager[K, V]) Delete(_ context.Context, keys ...K) {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
}

// Flush removes every entry.
func (c *InMemoryCacheManager[K, V]) Flush(_ context.Context) {
	c.cache.Flush()
	log.Debug(log.CatCache, "cache flushed", "cache", c.useCase)
}

// Len reports the number of stored entries, expired ones included until
// the janitor removes them.
func (c *InMemoryCacheManager[K, V]) Len() int {
	return c.cache.ItemCount()
}
