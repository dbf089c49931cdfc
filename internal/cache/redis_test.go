package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRemoteCache(t *testing.T) (*RemoteCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRemoteCache(client), mr
}

func TestRemoteCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRemoteCache(t)

	require.NoError(t, c.Set(ctx, "k1", "v1", time.Minute))

	val, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", val)
}

func TestRemoteCache_Miss(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRemoteCache(t)

	_, ok, err := c.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoteCache_DegradesOnBackendDown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRemoteCache(t)
	mr.Close()

	// A dead backend must degrade to a miss/no-op, never an error.
	_, ok, err := c.Get(ctx, "anything")
	require.NoError(t, err)
	assert.False(t, ok)

	err = c.Set(ctx, "anything", "v", time.Minute)
	require.NoError(t, err)
}

func TestRemoteCache_Delete(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRemoteCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRemoteCache_Exists(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRemoteCache(t)

	ok, err := c.Exists(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "present", "v", time.Minute))
	ok, err = c.Exists(ctx, "present")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoteCache_Info(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRemoteCache(t)

	info := c.Info(ctx)
	assert.Equal(t, "redis", info.Backend)
	assert.True(t, info.Healthy)

	mr.Close()
	info = c.Info(ctx)
	assert.False(t, info.Healthy)
}

func TestNew_FallsBackWhenRedisUnavailable(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	c := New(ctx, testRedisConfigUnreachable(), testCacheConfigEnabled(), logger)
	info := c.Info(ctx)
	assert.Equal(t, "memory", info.Backend)
}

func TestNew_UsesRedisWhenReachable(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	logger := newTestLogger()
	c := New(ctx, testRedisConfigFor(mr), testCacheConfigEnabled(), logger)
	info := c.Info(ctx)
	assert.Equal(t, "redis", info.Backend)
}
