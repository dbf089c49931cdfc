package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RemoteCache wraps a redis client, the remote variant of C1. Any
// transport error degrades Get/Set to a no-op rather than propagating,
// matching src/cache/redis_cache.py's "never raise" contract.
type RemoteCache struct {
	client *redis.Client
}

// NewRemoteCache wraps an already-constructed redis client.
func NewRemoteCache(client *redis.Client) *RemoteCache {
	return &RemoteCache{client: client}
}

// Ping checks liveness with a short timeout, used by the factory to
// decide whether to fall back to the in-process cache.
func (r *RemoteCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *RemoteCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		// Degrade to a miss; never surface a transport error to the caller.
		return "", false, nil
	}
	return val, true, nil
}

func (r *RemoteCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return nil
	}
	return nil
}

func (r *RemoteCache) Delete(ctx context.Context, key string) error {
	_ = r.client.Del(ctx, key).Err()
	return nil
}

func (r *RemoteCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, nil
	}
	return n > 0, nil
}

func (r *RemoteCache) Info(ctx context.Context) Stats {
	err := r.Ping(ctx)
	return Stats{
		Backend: "redis",
		Healthy: err == nil,
	}
}
