package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores pattern timestamps in redis, shared across
// orchestration instances.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{client: rdb}
}

func (r *RedisCache) key(userID string) string {
	return "patterns:last_calculated:" + userID
}

func (r *RedisCache) LastCalculated(ctx context.Context, userID string) (time.Time, bool) {
	val, err := r.client.Get(ctx, r.key(userID)).Result()
	if err != nil {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

func (r *RedisCache) SetLastCalculated(ctx context.Context, userID string, at time.Time) error {
	return r.client.Set(ctx, r.key(userID), at.Format(time.RFC3339), 0).Err()
}
