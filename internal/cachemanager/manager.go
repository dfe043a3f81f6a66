package cachemanager

import "context"

// CacheManager is a typed key/value cache.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V)
	Delete(ctx context.Context, keys ...K)
	Flush(ctx context.Context)
	Len() int
}
