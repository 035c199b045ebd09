// Package ratelimit counts requests per key in fixed windows stored in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

type Limiter interface {
	// Allow counts one request for key.
	Allow(ctx context.Context, key string) (Result, error)
	// Refund takes back a request counted by Allow.
	Refund(ctx context.Context, key string) error
}

// RedisLimiter allows Limit requests per Window for each key.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	Limit  int
	Window time.Duration
}

func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, Limit: limit, Window: window}
}

// NewRedisClient creates and pings a Redis client.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return rdb, nil
}

func (l *RedisLimiter) key(key string) string {
	return "ratelimit:" + l.prefix + ":" + key
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k := l.key(key)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.Window)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("ratelimit %s: %w", l.prefix, err)
	}

	count := int(incr.Val())
	reset := ttl.Val()
	if reset < 0 {
		reset = l.Window
	}

	remaining := l.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: count <= l.Limit, Remaining: remaining, ResetIn: reset}, nil
}

func (l *RedisLimiter) Refund(ctx context.Context, key string) error {
	k := l.key(key)
	n, err := l.client.Decr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("ratelimit %s: %w", l.prefix, err)
	}
	if n < 0 {
		return l.client.Del(ctx, k).Err()
	}
	return nil
}

// Noop allows everything; used when no Redis is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) (Result, error) { return Result{Allowed: true}, nil }
func (Noop) Refund(context.Context, string) error           { return nil }
