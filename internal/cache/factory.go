package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Nic0Byte/NearYou-v1/internal/config"
)

// New selects the cache backend for C1: it attempts Redis first and
// transparently falls back to the in-process variant if Redis does not
// answer a ping within a short timeout. The choice is logged once and
// surfaced forever after via Info().
func New(ctx context.Context, cfg config.RedisConfig, cacheCfg config.CacheConfig, logger *slog.Logger) Cache {
	if !cacheCfg.Enabled {
		logger.Info("cache disabled by configuration, using in-process cache")
		return NewMemoryCache(60 * time.Second)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	remote := NewRemoteCache(client)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := remote.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, falling back to in-process cache", "error", err)
		return NewMemoryCache(60 * time.Second)
	}

	logger.Info("using redis cache backend", "addr", fmt.Sprintf("%s:%s", cfg.Host, cfg.Port))
	return remote
}
