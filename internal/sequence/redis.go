package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "seq:"

// RedisAllocator uses INCR, which creates the key at 0 and increments it in
// one server-side step.
type RedisAllocator struct {
	rdb *redis.Client
}

func NewRedisAllocator(rdb *redis.Client) *RedisAllocator {
	return &RedisAllocator{rdb: rdb}
}

func (a *RedisAllocator) Next(ctx context.Context, scopeKey string) (int64, error) {
	if scopeKey == "" {
		return 0, ErrInvalidScope
	}
	n, err := a.rdb.Incr(ctx, redisKeyPrefix+scopeKey).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: redis incr %s: %v", ErrAllocationUnavailable, scopeKey, err)
	}
	return n, nil
}
