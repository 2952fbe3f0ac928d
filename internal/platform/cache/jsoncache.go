package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSONCache stores JSON-encoded values in Redis with a fixed TTL. A nil cache
// (or a cache built around a nil client) degrades to calling the loader
// directly, so callers never need to branch on cache availability.
type JSONCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewJSONCache instantiates the cache helper. A nil logger discards
// degradation warnings.
func NewJSONCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *JSONCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &JSONCache{client: client, ttl: ttl, logger: logger}
}

// FetchJSON loads a cached value or populates it using the loader. Redis
// failures degrade to serving the loader's value directly; the cache never
// turns a readable value into an error.
func (c *JSONCache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		return loadInto(ctx, dest, loader)
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(raw, dest)
	}
	if err != redis.Nil {
		c.logger.Warn("cache unavailable, serving uncached value", "key", key, "error", err)
		return loadInto(ctx, dest, loader)
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return json.Unmarshal(encoded, dest)
}

// Invalidate drops cached keys after a mutation.
func (c *JSONCache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func loadInto(ctx context.Context, dest any, loader func(context.Context) (any, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	return reencode(value, dest)
}

func reencode(value, dest any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
