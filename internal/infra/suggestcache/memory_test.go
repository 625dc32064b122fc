package suggestcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/weather-records/internal/domain/geo"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute)

	_, ok, err := cache.Get(ctx, "5:paris")
	require.NoError(t, err)
	require.False(t, ok)

	places := []geo.Place{{PlaceID: "1", DisplayName: "Paris, France", Lat: 48.85, Lon: 2.35}}
	require.NoError(t, cache.Set(ctx, "5:paris", places, 0))
	places[0].DisplayName = "changed"

	got, ok, err := cache.Get(ctx, "5:paris")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Paris, France", got[0].DisplayName)
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute)
	require.NoError(t, cache.Set(ctx, "k", []geo.Place{{PlaceID: "1"}}, 10*time.Millisecond))
	require.Eventually(t, func() bool {
		_, ok, _ := cache.Get(ctx, "k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestValkeyCacheKeyPrefix(t *testing.T) {
	require.Equal(t, "suggest:5:paris", NewValkeyCache(nil, "").entryKey("5:paris"))
	require.Equal(t, "wr:k", NewValkeyCache(nil, "wr").entryKey("k"))
}
