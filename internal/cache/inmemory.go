package cache

import (
	"context"
	"strings"
	"time"

	goCache "github.com/patrickmn/go-cache"
)

// DefaultExpiration is the default expiration time for cache entries
const DefaultExpiration = 5 * time.Minute

// DefaultCleanupInterval is how often expired items are removed from the cache
const DefaultCleanupInterval = 10 * time.Minute

// InMemoryCache implements the Cache interface using github.com/patrickmn/go-cache.
// Values are stored as given, so readers get back the same Go type they wrote.
type InMemoryCache struct {
	cache *goCache.Cache
}

// NewInMemoryCache creates a process-local cache with the given default TTL
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	return &InMemoryCache{
		cache: goCache.New(ttl, DefaultCleanupInterval),
	}
}

func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	span := StartCacheSpan(ctx, "memory", "get", map[string]interface{}{"key": key})
	defer FinishSpan(span)
	return c.cache.Get(key)
}

func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) {
	if expiration == 0 {
		expiration = goCache.DefaultExpiration
	}
	c.cache.Set(key, value, expiration)
}

func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

func (c *InMemoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

func (c *InMemoryCache) Flush(_ context.Context) {
	c.cache.Flush()
}

// NoopCache is used when caching is disabled
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (interface{}, bool)         { return nil, false }
func (NoopCache) Set(context.Context, string, interface{}, time.Duration) {}
func (NoopCache) Delete(context.Context, string)                          {}
func (NoopCache) DeleteByPrefix(context.Context, string)                  {}
func (NoopCache) Flush(context.Context)                                   {}
