package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/redis/go-redis/v9"
)

const redisScanBatch = 200

// RedisCache implements Cache on Redis so cached projections are shared by
// every API instance. Values are stored as JSON and returned as json.RawMessage;
// use Fetch to decode them.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewRedisClient connects to the configured Redis server and pings it
func NewRedisClient(cfg *config.Configuration, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.Infow("connected to redis", "address", cfg.Redis.Address, "db", cfg.Redis.DB)
	return client, nil
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	return &RedisCache{client: client, ttl: ttl, logger: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	span := StartCacheSpan(ctx, "redis", "get", map[string]interface{}{"key": key})
	defer FinishSpan(span)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			SetSpanError(span, err)
			c.logger.Warnw("redis get failed", "key", key, "error", err)
		}
		return nil, false
	}
	SetSpanSuccess(span)
	return json.RawMessage(raw), true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if expiration == 0 {
		expiration = c.ttl
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warnw("redis set skipped, value not serializable", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		c.logger.Warnw("redis set failed", "key", key, "error", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warnw("redis delete failed", "key", key, "error", err)
	}
}

func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) {
	iter := c.client.Scan(ctx, 0, prefix+"*", redisScanBatch).Iterator()
	keys := make([]string, 0, redisScanBatch)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == redisScanBatch {
			c.client.Del(ctx, keys...)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warnw("redis scan failed", "prefix", prefix, "error", err)
	}
	if len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
}

// Flush clears the selected Redis database
func (c *RedisCache) Flush(ctx context.Context) {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		c.logger.Warnw("redis flush failed", "error", err)
	}
}
