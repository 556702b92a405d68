package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Alturino/marketplace/internal/repository"
)

const (
	keyCartItemsByUserId = "carts:user:%s"
	keyCartVersion       = "carts:user:%s:version"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrStaleFill = errors.New("cart changed since it was read")
)

// CartCache is a read-through cache guarded by a per-user version. Delete bumps
// the version, and Fill only writes when the version is still the one read
// before loading from the database.
type CartCache interface {
	Get(c context.Context, userId uuid.UUID) ([]repository.CartItem, error)
	Version(c context.Context, userId uuid.UUID) (int64, error)
	Fill(c context.Context, userId uuid.UUID, version int64, items []repository.CartItem) error
	Delete(c context.Context, userId uuid.UUID) error
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = 15 * time.Minute
	}
	return &RedisCache{client: client, baseTTL: baseTTL}
}

func CacheKey(userId uuid.UUID) string {
	return fmt.Sprintf(keyCartItemsByUserId, userId.String())
}

func VersionKey(userId uuid.UUID) string {
	return fmt.Sprintf(keyCartVersion, userId.String())
}

// versionTTL outlives every filled entry so a fill can never see an expired version.
func (r *RedisCache) versionTTL() time.Duration {
	return 4 * (r.baseTTL + 5*time.Minute)
}

func (r *RedisCache) Get(c context.Context, userId uuid.UUID) ([]repository.CartItem, error) {
	data, err := r.client.Get(c, CacheKey(userId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed getting cart items from cache with error=%w", err)
	}

	items := []repository.CartItem{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed unmarshaling cart items with error=%w", err)
	}
	return items, nil
}

func (r *RedisCache) Version(c context.Context, userId uuid.UUID) (int64, error) {
	version, err := r.client.Get(c, VersionKey(userId)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed getting cart version from cache with error=%w", err)
	}
	return version, nil
}

// Fill stores items with the base TTL plus up to five minutes of jitter, unless
// the cart was invalidated after version was read.
func (r *RedisCache) Fill(c context.Context, userId uuid.UUID, version int64, items []repository.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed marshaling cart items with error=%w", err)
	}

	ttl := r.baseTTL + time.Duration(rand.IntN(5))*time.Minute
	versionKey := VersionKey(userId)
	err = r.client.Watch(c, func(tx *redis.Tx) error {
		current, err := tx.Get(c, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return ErrStaleFill
		}
		_, err = tx.TxPipelined(c, func(pipe redis.Pipeliner) error {
			pipe.Set(c, CacheKey(userId), data, ttl)
			return nil
		})
		return err
	}, versionKey)
	switch {
	case errors.Is(err, ErrStaleFill), errors.Is(err, redis.TxFailedErr):
		return ErrStaleFill
	case err != nil:
		return fmt.Errorf("failed setting cart items to cache with error=%w", err)
	}
	return nil
}

func (r *RedisCache) Delete(c context.Context, userId uuid.UUID) error {
	versionKey := VersionKey(userId)
	_, err := r.client.TxPipelined(c, func(pipe redis.Pipeliner) error {
		pipe.Incr(c, versionKey)
		pipe.Expire(c, versionKey, r.versionTTL())
		pipe.Del(c, CacheKey(userId))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed deleting cart items from cache with error=%w", err)
	}
	return nil
}
