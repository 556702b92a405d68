package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/repository"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestFillThenGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	c := context.Background()
	userId := uuid.New()
	items := []repository.CartItem{
		{
			ID:       uuid.New(),
			UserID:   userId,
			ItemID:   uuid.New(),
			ItemType: item.TypeBook,
			Name:     "Dune",
			Price:    decimal.RequireFromString("12.50"),
			Quantity: 2,
		},
	}

	require.NoError(t, cache.Fill(c, userId, 0, items))
	assert.True(t, mr.Exists(CacheKey(userId)))
	ttl := mr.TTL(CacheKey(userId))
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.Less(t, ttl, 6*time.Minute)

	actual, err := cache.Get(c, userId)
	require.NoError(t, err)
	require.Len(t, actual, 1)
	assert.Equal(t, items[0].ItemID, actual[0].ItemID)
	assert.Equal(t, item.TypeBook, actual[0].ItemType)
	assert.True(t, items[0].Price.Equal(actual[0].Price))
	assert.EqualValues(t, 2, actual[0].Quantity)
}

func TestGetCacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	actual, err := cache.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, actual)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	userId := uuid.New()
	require.NoError(t, mr.Set(CacheKey(userId), "{not json"))

	_, err := cache.Get(context.Background(), userId)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	c := context.Background()
	userId := uuid.New()

	require.NoError(t, cache.Fill(c, userId, 0, []repository.CartItem{}))
	require.NoError(t, cache.Delete(c, userId))
	assert.False(t, mr.Exists(CacheKey(userId)))

	version, err := cache.Version(c, userId)
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)
	assert.Greater(t, mr.TTL(VersionKey(userId)), time.Duration(0))

	_, err = cache.Get(c, userId)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestFillAfterDeleteIsRejected(t *testing.T) {
	cache, mr := setupTestRedis(t)
	c := context.Background()
	userId := uuid.New()
	stale := []repository.CartItem{{ID: uuid.New(), UserID: userId, ItemID: uuid.New(), ItemType: item.TypeBook, Quantity: 1}}

	version, err := cache.Version(c, userId)
	require.NoError(t, err)
	assert.EqualValues(t, 0, version)

	require.NoError(t, cache.Delete(c, userId))

	err = cache.Fill(c, userId, version, stale)
	assert.ErrorIs(t, err, ErrStaleFill)
	assert.False(t, mr.Exists(CacheKey(userId)))

	version, err = cache.Version(c, userId)
	require.NoError(t, err)
	require.NoError(t, cache.Fill(c, userId, version, stale))
	assert.True(t, mr.Exists(CacheKey(userId)))
}
