package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestCache(size int) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(size)
	mc.now = clock.now
	return mc, clock
}

func TestMemoryCache_GetSetExpire(t *testing.T) {
	ctx := context.Background()
	mc, clock := newTestCache(10)

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))
	got, found, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), got)

	clock.t = clock.t.Add(2 * time.Minute)
	_, found, err = mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, mc.Len())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc, clock := newTestCache(2)

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Hour))
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), time.Hour))
	clock.t = clock.t.Add(time.Second)
	_, _, _ = mc.Get(ctx, "a")
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "c", []byte("3"), time.Hour))

	_, found, _ := mc.Get(ctx, "b")
	assert.False(t, found)
	_, found, _ = mc.Get(ctx, "a")
	assert.True(t, found)
	assert.Equal(t, 2, mc.Len())
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestCache(10)

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, mc.Delete(ctx, "k"))
	_, found, _ := mc.Get(ctx, "k")
	assert.False(t, found)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestCache(10)

	type payload struct {
		Station string  `json:"station"`
		Temp    float64 `json:"temp"`
	}
	require.NoError(t, SetJSON(ctx, mc, "w", payload{"10637", 4.5}, time.Hour))

	var out payload
	found, err := GetJSON(ctx, mc, "w", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{"10637", 4.5}, out)

	require.NoError(t, mc.Set(ctx, "bad", []byte("{"), time.Hour))
	found, err = GetJSON(ctx, mc, "bad", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_WrapKey(t *testing.T) {
	assert.Equal(t, "energydash:weather", (&RedisCache{prefix: "energydash"}).wrapKey("weather"))
	assert.Equal(t, "weather", (&RedisCache{}).wrapKey("weather"))
}
