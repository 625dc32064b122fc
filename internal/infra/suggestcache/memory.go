package suggestcache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yanqian/weather-records/internal/domain/autocomplete"
	"github.com/yanqian/weather-records/internal/domain/geo"
)

// MemoryCache keeps geocoding suggestions in process memory.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache builds a cache whose entries default to ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MemoryCache{store: gocache.New(ttl, 2*ttl)}
}

// Get implements autocomplete.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]geo.Place, bool, error) {
	value, ok := c.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	places, ok := value.([]geo.Place)
	if !ok {
		c.store.Delete(key)
		return nil, false, nil
	}
	return append([]geo.Place(nil), places...), true, nil
}

// Set implements autocomplete.Cache.
func (c *MemoryCache) Set(_ context.Context, key string, places []geo.Place, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, append([]geo.Place(nil), places...), ttl)
	return nil
}

var _ autocomplete.Cache = (*MemoryCache)(nil)
