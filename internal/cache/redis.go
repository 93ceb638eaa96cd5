package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pappy/matching-engine/internal/config"
)

// CountTTL bounds how long a cached like count survives without reads
// or writes.
const CountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes the Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

func (c *RedisCache) Decr(ctx context.Context, key string) (int64, error) {
	return c.Client.Decr(ctx, key).Result()
}

// KeyForLikeCount generates the Redis key for an announcement's
// received-like count.
func (c *RedisCache) KeyForLikeCount(announcementID uint64) string {
	return fmt.Sprintf("likes:count:%d", announcementID)
}

// UpdateLikeCount overwrites the cached count and refreshes the TTL.
func (c *RedisCache) UpdateLikeCount(ctx context.Context, announcementID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForLikeCount(announcementID), count, CountTTL).Err()
}

// GetLikeCount returns the cached count, or ok=false on a miss.
// Refreshes TTL on access.
func (c *RedisCache) GetLikeCount(ctx context.Context, announcementID uint64) (int64, bool, error) {
	key := c.KeyForLikeCount(announcementID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil // treat a corrupt entry as a miss
	}
	_ = c.Client.Expire(ctx, key, CountTTL).Err()
	return n, true, nil
}
