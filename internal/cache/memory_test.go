package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(50 * time.Millisecond)

	require.NoError(t, c.Set(ctx, "k1", "v1", time.Minute))

	val, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", val)
}

func TestMemoryCache_Miss(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Second)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Second)

	require.NoError(t, c.Set(ctx, "short", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok, "expired entry must not be returned")
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Second)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_Exists(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Second)

	ok, err := c.Exists(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "present", "v", time.Minute))
	ok, err = c.Exists(ctx, "present")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_Info(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Second)
	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))

	info := c.Info(ctx)
	assert.Equal(t, "memory", info.Backend)
	assert.True(t, info.Healthy)
}

func TestMemoryCache_JSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Second)

	type payload struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	in := payload{Name: "ada", Age: 30}
	require.NoError(t, SetJSON(ctx, c, "user:1", in, time.Minute))

	var out payload
	ok, err := GetJSON(ctx, c, "user:1", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, out)
}
