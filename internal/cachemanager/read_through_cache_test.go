package cachemanager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadThroughCache_LoadsOnce(t *testing.T) {
	calls := 0
	rt := NewReadThroughCache[string, string, int](
		NewInMemoryCacheManager[string, string]("test", NoExpiration),
		func(_ context.Context, n int) (string, error) {
			calls++
			return "value", nil
		},
	)

	for i := 0; i < 3; i++ {
		got, err := rt.Get(context.Background(), "k", i)
		require.NoError(t, err)
		require.Equal(t, "value", got)
	}
	require.Equal(t, 1, calls)
}

func TestReadThroughCache_ErrorsAreNotCached(t *testing.T) {
	calls := 0
	cache := NewInMemoryCacheManager[string, string]("test", NoExpiration)
	rt := NewReadThroughCache[string, string, struct{}](cache,
		func(context.Context, struct{}) (string, error) {
			calls++
			return "", errors.New("load failed")
		},
	)

	_, err := rt.Get(context.Background(), "k", struct{}{})
	require.Error(t, err)
	_, err = rt.Get(context.Background(), "k", struct{}{})
	require.Error(t, err)
	require.Equal(t, 2, calls)
	require.Zero(t, cache.Len())
}
