package cache

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/Nic0Byte/NearYou-v1/internal/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCacheConfigEnabled() config.CacheConfig {
	return config.CacheConfig{Enabled: true, TTL: 5 * time.Minute}
}

func testRedisConfigUnreachable() config.RedisConfig {
	return config.RedisConfig{Host: "127.0.0.1", Port: "1"}
}

func testRedisConfigFor(mr *miniredis.Miniredis) config.RedisConfig {
	host, port, _ := strings.Cut(mr.Addr(), ":")
	return config.RedisConfig{Host: host, Port: port}
}
