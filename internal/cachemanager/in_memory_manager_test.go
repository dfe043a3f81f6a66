package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type exampleStruct struct {
	ID   int
	Name string
}

func TestInMemoryCacheManager_SetGet(t *testing.T) {
	cache := NewInMemoryCacheManager[string, exampleStruct]("test", NoExpiration)
	ctx := context.Background()

	cache.Set(ctx, "ex:1", exampleStruct{ID: 1, Name: "apple"})

	got, ok := cache.Get(ctx, "ex:1")
	require.True(t, ok)
	require.Equal(t, exampleStruct{ID: 1, Name: "apple"}, got)
	require.Equal(t, 1, cache.Len())
}

func TestInMemoryCacheManager_Miss(t *testing.T) {
	cache := NewInMemoryCacheManager[string, int]("test", NoExpiration)
	got, ok := cache.Get(context.Background(), "missing")
	require.False(t, ok)
	require.Zero(t, got)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	cache := NewInMemoryCacheManager[string, int]("test", NoExpiration)
	ctx := context.Background()
	cache.Set(ctx, "a", 1)
	cache.Set(ctx, "b", 2)
	cache.Set(ctx, "c", 3)

	cache.Delete(ctx, "a", "b")
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)
	require.Equal(t, 1, cache.Len())

	cache.Flush(ctx)
	require.Zero(t, cache.Len())
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := NewInMemoryCacheManager[string, int]("test", 20*time.Millisecond)
	ctx := context.Background()
	cache.Set(ctx, "a", 1)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(ctx, "a")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

type key string

func TestInMemoryCacheManager_NamedKeyType(t *testing.T) {
	cache := NewInMemoryCacheManager[key, string]("test", NoExpiration)
	cache.Set(context.Background(), key("k"), "v")
	got, ok := cache.Get(context.Background(), key("k"))
	require.True(t, ok)
	require.Equal(t, "v", got)
}
