package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisStore(rdb, "test:revoked:"), mr
}

func TestRedisStore_RevokeAndCheck(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "tok-1", time.Now().Add(time.Hour)))

	revoked, err = store.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists("test:revoked:tok-1"))

	revoked, err = store.IsRevoked(ctx, "tok-2")
	require.NoError(t, err)
	assert.False(t, revoked, "other tokens stay valid")
}

func TestRedisStore_EntryExpiresWithToken(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "tok-1", time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisStore_AlreadyExpiredIsNoop(t *testing.T) {
	store, mr := newRedisStore(t)

	require.NoError(t, store.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("test:revoked:old"))
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	store := NewRedisStore(rdb, "test:revoked:")
	mr.Close()

	_, err = store.IsRevoked(context.Background(), "tok-1")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "tok-1", now.Add(time.Minute)))
	revoked, _ := store.IsRevoked(ctx, "tok-1")
	assert.True(t, revoked)

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	revoked, _ = store.IsRevoked(ctx, "tok-1")
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "tok-2", now.Add(5*time.Minute)))
	assert.NotContains(t, store.revoked, "tok-1", "expired entries are swept on write")
}
