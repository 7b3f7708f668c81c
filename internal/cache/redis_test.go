package cache

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlipCacheUnreachableReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	rdb := NewRedis(addr, "")
	defer rdb.Close()
	c := NewSlipCache(rdb, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, ok, err := c.Get(ctx, "slip:x:40")
	require.Error(t, err)
	assert.False(t, ok)
	require.Error(t, Ping(ctx, rdb))
}

// Runs against a real server when REDIS_TEST_ADDR is set.
func TestSlipCacheRedis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := NewRedis(addr, os.Getenv("REDIS_TEST_PASSWORD"))
	defer rdb.Close()
	ctx := context.Background()
	require.NoError(t, Ping(ctx, rdb))

	c := NewSlipCache(rdb, time.Minute)
	key := "slip:test-" + uuid.NewString() + ":40"

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, "slip text"))
	v, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "slip text", v)

	ttl, err := rdb.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	rdb.Del(ctx, key)
}
