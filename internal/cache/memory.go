package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the in-process variant of C1: a locked hash map with a
// background reaper, provided by patrickmn/go-cache (the same library
// the teacher's poi_service.go uses for its short-lived result cache).
// The janitor goroutine it starts internally sweeps expired entries at
// a fixed cleanup interval, satisfying spec.md's "at least every 60s"
// requirement.
type MemoryCache struct {
	inner *gocache.Cache
}

// NewMemoryCache creates a MemoryCache whose janitor sweeps at
// reapInterval (clamped to at most 60s per spec.md §4.1).
func NewMemoryCache(reapInterval time.Duration) *MemoryCache {
	if reapInterval <= 0 || reapInterval > 60*time.Second {
		reapInterval = 60 * time.Second
	}
	return &MemoryCache{inner: gocache.New(gocache.NoExpiration, reapInterval)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.inner.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.inner.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.inner.Delete(key)
	return nil
}

func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.inner.Get(key)
	return ok, nil
}

func (c *MemoryCache) Info(_ context.Context) Stats {
	return Stats{
		Backend: "memory",
		Healthy: true,
		Extra:   map[string]any{"total_keys": c.inner.ItemCount()},
	}
}

// Stop is a no-op retained for interface parity with earlier
// hand-rolled reapers; go-cache's janitor stops when the Cache value is
// garbage collected.
func (c *MemoryCache) Stop() {}
