// Package cache provides JSON value caches keyed by string, backed by Redis or
// disabled entirely.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/petshop-commerce/internal"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

// NewRedisClient builds a client from the redis config section.
func NewRedisClient(cfg internal.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisJSON stores values of T as JSON under prefix+key.
type RedisJSON[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisJSON[T any](client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *RedisJSON[T] {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisJSON[T]{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// Get returns nil, nil on a miss.
func (c *RedisJSON[T]) Get(ctx context.Context, key string) (*T, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss", "key", c.prefix+key)
		return nil, nil
	}
	if err != nil {
		c.logger.Error("cache get error", "key", c.prefix+key, "error", err)
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	c.logger.Debug("cache hit", "key", c.prefix+key)
	return &v, nil
}

func (c *RedisJSON[T]) Set(ctx context.Context, key string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Error("cache set error", "key", c.prefix+key, "error", err)
		return err
	}
	return nil
}

func (c *RedisJSON[T]) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// Purge removes every key under the prefix.
func (c *RedisJSON[T]) Purge(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Noop is used when Redis is disabled; every Get misses.
type Noop[T any] struct{}

func (Noop[T]) Get(context.Context, string) (*T, error) { return nil, nil }

func (Noop[T]) Set(context.Context, string, *T) error { return nil }

func (Noop[T]) Delete(context.Context, string) error { return nil }

func (Noop[T]) Purge(context.Context) error { return nil }
