package cache

import (
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/types"
)

// NewCache builds the cache selected by cache.type. A Redis server that cannot
// be reached degrades to the in-memory cache rather than failing startup.
func NewCache(cfg *config.Configuration, log *logger.Logger) Cache {
	if !cfg.Cache.Enabled {
		log.Info("cache is disabled")
		return NoopCache{}
	}

	if cfg.Cache.Type == types.CacheTypeRedis {
		client, err := NewRedisClient(cfg, log)
		if err == nil {
			return NewRedisCache(client, cfg.Cache.TTL, log)
		}
		log.Warnw("redis unavailable, falling back to in-memory cache",
			"address", cfg.Redis.Address,
			"error", err,
		)
	}

	log.Infow("initialized in-memory cache", "ttl", cfg.Cache.TTL)
	return NewInMemoryCache(cfg.Cache.TTL)
}
