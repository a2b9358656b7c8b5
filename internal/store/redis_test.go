package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisCache(t *testing.T, ttl time.Duration) (*RedisResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisResultCache(client, ttl), mr
}

func TestRedisResultCache_SetGet(t *testing.T) {
	cache, mr := newMiniredisCache(t, 10*time.Minute)
	ctx := context.Background()

	rec := &Record{ID: "id-1", CallIdentifier: "call-1", Result: sampleResult(), CreatedAt: time.Now().UTC()}
	require.NoError(t, cache.Set(ctx, rec))

	assert.True(t, mr.Exists("normalization:result:call-1"))
	assert.Equal(t, 10*time.Minute, mr.TTL("normalization:result:call-1"))

	got, err := cache.Get(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "ScheduleHearing", *got.Result.Intent)
	assert.Equal(t, []string{"grantedRelief"}, got.Result.AdditionalData.Keys())
}

func TestRedisResultCache_Expiry(t *testing.T) {
	cache, mr := newMiniredisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &Record{CallIdentifier: "call-1", Result: sampleResult()}))
	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "call-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisResultCache_Miss(t *testing.T) {
	cache, _ := newMiniredisCache(t, time.Minute)

	_, err := cache.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisResultCache_Errors(t *testing.T) {
	t.Run("backend error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(CacheKey("call-1")).SetErr(errors.New("redis down"))

		_, err := NewRedisResultCache(client, time.Minute).Get(context.Background(), "call-1")
		assert.ErrorContains(t, err, "redis down")
		assert.NotErrorIs(t, err, ErrCacheMiss)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt entry", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(CacheKey("call-1")).SetVal("not-json")

		_, err := NewRedisResultCache(client, time.Minute).Get(context.Background(), "call-1")
		assert.ErrorContains(t, err, "decode cached record")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil reply", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(CacheKey("call-1")).RedisNil()

		_, err := NewRedisResultCache(client, time.Minute).Get(context.Background(), "call-1")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}
