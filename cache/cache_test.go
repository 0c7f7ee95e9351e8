package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Title string `json:"title"`
	Likes int    `json:"likes"`
}

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	var got item
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", item{Title: "a", Likes: 2}))
	ok, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, item{Title: "a", Likes: 2}, got)
}

func TestMemoryExpires(t *testing.T) {
	c := NewMemory(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", item{Title: "a"}))
	now = now.Add(2 * time.Minute)

	var got item
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestMemoryPurge(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))

	require.NoError(t, c.Purge(ctx))
	assert.Zero(t, c.Len())
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), time.Minute)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Purge(ctx))

	require.NoError(t, c.Set(ctx, "post:slug:x", item{Title: "x"}))
	var got item
	ok, err := c.Get(ctx, "post:slug:x", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", got.Title)

	require.NoError(t, c.Purge(ctx))
	ok, err = c.Get(ctx, "post:slug:x", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}
