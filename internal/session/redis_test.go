package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStorage(t *testing.T) *RedisStorage {
	t.Helper()
	mr := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return &RedisStorage{rdb: rdb, prefix: "session:"}
}

func TestRedisStorageRoundTrip(t *testing.T) {
	storage := newTestRedisStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, KeyToken, "tok-1"))

	val, err := storage.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", val)
}

func TestRedisStorageMissingKey(t *testing.T) {
	storage := newTestRedisStorage(t)

	_, err := storage.Get(context.Background(), KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorageDelete(t *testing.T) {
	storage := newTestRedisStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, KeyToken, "tok-1"))
	require.NoError(t, storage.Set(ctx, KeyUserID, "u1"))

	require.NoError(t, storage.Delete(ctx, KeyToken, KeyUserID, KeyCart))

	_, err := storage.Get(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = storage.Get(ctx, KeyUserID)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting missing keys is a no-op
	require.NoError(t, storage.Delete(ctx, KeyToken))
}
