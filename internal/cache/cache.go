// Package cache implements the C1 cache abstraction: a key-value store
// with TTL, exposed as one contract over two interchangeable backends
// (remote Redis, in-process map), following the original Python
// services' RedisCache/MemoryCache split (src/cache/*.py).
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Stats describes the active backend, reported by Info().
type Stats struct {
	Backend string `json:"backend"` // "redis" or "memory"
	Healthy bool   `json:"healthy"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Cache is the capability set every backend must implement. Get/Set
// degrade to no-ops on transient backend failure — callers never see
// an error from a cache that is merely unavailable.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Info(ctx context.Context) Stats
}

// GetJSON fetches key and unmarshals it into dst, round-tripping
// structured values transparently on top of the string contract.
func GetJSON(ctx context.Context, c Cache, key string, dst any) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("cache: failed to unmarshal value for key %q: %w", key, err)
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with the given TTL.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal value for key %q: %w", key, err)
	}
	return c.Set(ctx, key, string(raw), ttl)
}
