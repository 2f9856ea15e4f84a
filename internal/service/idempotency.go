package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// IdempotencyGuard remembers client supplied request keys so a retried
// request is rejected instead of executed twice.
type IdempotencyGuard interface {
	// Acquire returns false if the key was already used.
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisIdempotencyGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotencyGuard(rdb *redis.Client, ttl time.Duration) *RedisIdempotencyGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisIdempotencyGuard{rdb: rdb, ttl: ttl}
}

func redisKey(key string) string {
	return fmt.Sprintf("idempotent-key:%s", key)
}

func (g *RedisIdempotencyGuard) Acquire(ctx context.Context, key string) (bool, error) {
	return g.rdb.SetNX(ctx, redisKey(key), "exists", g.ttl).Result()
}

func (g *RedisIdempotencyGuard) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, redisKey(key)).Err()
}
