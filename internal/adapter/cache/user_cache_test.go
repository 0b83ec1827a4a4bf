package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-api-service/internal/domain/user"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func newCache(t *testing.T, ttl time.Duration) (*RedisUserCache, *miniredis.Miniredis) {
	client, mr := setupTestRedis(t)
	return NewRedisUserCache(client, ttl, zaptest.NewLogger(t)), mr
}

func TestRedisUserCache_SetGet_DropsPasswordHash(t *testing.T) {
	c, mr := newCache(t, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &domain.User{ID: 1, Name: "Ana", Email: "ana@x.com", PasswordHash: "$2a$10$secret"}))

	raw, err := mr.Get(Key(1))
	require.NoError(t, err)
	assert.NotContains(t, raw, "secret")

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: 1, Name: "Ana", Email: "ana@x.com"}, got)
}

func TestRedisUserCache_Get_Miss(t *testing.T) {
	c, _ := newCache(t, time.Minute)

	got, err := c.Get(context.Background(), 42)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_Set_NilUser(t *testing.T) {
	c, _ := newCache(t, time.Minute)

	assert.Error(t, c.Set(context.Background(), nil))
}

func TestRedisUserCache_TTLExpiry(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &domain.User{ID: 2, Name: "Bea", Email: "bea@x.com"}))
	assert.Equal(t, time.Minute, mr.TTL(Key(2)))

	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_Invalidate(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, c.Set(ctx, &domain.User{ID: id, Name: "u", Email: "u@x.com"}))
	}

	require.NoError(t, c.Invalidate(ctx, 1, 3, 99))
	require.NoError(t, c.Invalidate(ctx))

	assert.False(t, mr.Exists(Key(1)))
	assert.True(t, mr.Exists(Key(2)))
	assert.False(t, mr.Exists(Key(3)))
}

func TestRedisUserCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	require.NoError(t, mr.Set(Key(5), "{not json"))

	got, err := c.Get(context.Background(), 5)

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(Key(5)))
}

func TestRedisUserCache_ServerDown(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	mr.Close()

	_, err := c.Get(context.Background(), 1)
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), &domain.User{ID: 1}))
}
