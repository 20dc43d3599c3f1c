package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalOnlyCacheGetAfterSet(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	c.Set(ctx, "discover:lisbon:18:default", []string{"a", "b"}, time.Minute)

	var got []string
	ok := c.Get(ctx, "discover:lisbon:18:default", &got)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestCacheMissWhenAbsent(t *testing.T) {
	c := New(nil)
	var got string
	ok := c.Get(context.Background(), "no-such-key", &got)
	assert.False(t, ok)
}

func TestLocalCacheEvictsLRU(t *testing.T) {
	lc := NewLocalCache(2, time.Minute)
	lc.Set("a", []byte("1"), 0)
	lc.Set("b", []byte("2"), 0)
	lc.Set("c", []byte("3"), 0) // evicts "a", the least recently used

	_, ok := lc.Get("a")
	assert.False(t, ok)

	v, ok := lc.Get("b")
	assert.True(t, ok)
	assert.Equal(t, []byte("2"), v)
}

func TestLocalCacheExpiresLazily(t *testing.T) {
	lc := NewLocalCache(10, time.Millisecond)
	lc.Set("k", []byte("v"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := lc.Get("k")
	assert.False(t, ok)
}

func TestDiscoveryKeyCanonicalization(t *testing.T) {
	k1 := DiscoveryKey("Lisbon", 18, []string{"museums", "history"})
	k2 := DiscoveryKey("  LISBON ", 18, []string{"history", "museums"})
	assert.Equal(t, k1, k2)
}

func TestDiscoveryKeyDefaultInterests(t *testing.T) {
	k := DiscoveryKey("Rome", 10, nil)
	assert.Equal(t, "discover:rome:10:default", k)
}

func TestPlaceKeyAndFoodKey(t *testing.T) {
	assert.Equal(t, "poi:paris:abc123", PlaceKey("Paris", "abc123"))
	assert.Equal(t, "discover_food:berlin:bars:5", FoodDiscoveryKey("Berlin", "bars", 5))
}

func TestGlobMatch(t *testing.T) {
	assert.True(t, globMatch("discover:lisbon:*", "discover:lisbon:18:default"))
	assert.False(t, globMatch("discover:lisbon:*", "discover:rome:18:default"))
	assert.True(t, globMatch("poi:*:abc", "poi:rome:abc"))
}

func TestInvalidateRemovesMatchingLocalKeys(t *testing.T) {
	c := New(nil)
	ctx := context.Background()
	c.Set(ctx, "discover:lisbon:10:default", "x", time.Minute)
	c.Set(ctx, "poi:lisbon:1", "y", time.Minute)

	c.Invalidate(ctx, "discover:lisbon:*")

	var out string
	assert.False(t, c.Get(ctx, "discover:lisbon:10:default", &out))
	assert.True(t, c.Get(ctx, "poi:lisbon:1", &out))
}
