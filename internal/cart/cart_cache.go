package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	// ErrStaleCart means the cart was invalidated after the caller read
	// its version; the entry was not written.
	ErrStaleCart = errors.New("cart invalidated since version was read")
)

// Cache holds stored carts (references only, never joined prices). Every
// Delete bumps a per-user version; Set writes only while the version it
// was given is still current, so a read that raced a mutation cannot
// repopulate the old cart.
//
//go:generate mockgen -source=cart_cache.go -destination=../mock/cart/cart_cache_mock.go -package=mock
type Cache interface {
	Get(ctx context.Context, userID uuid.UUID) (Cart, error)
	Version(ctx context.Context, userID uuid.UUID) (int64, error)
	Set(ctx context.Context, cart Cart, version int64) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type RedisCache struct {
	client     *redis.Client
	baseTTL    time.Duration
	versionTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:     client,
		baseTTL:    15 * time.Minute,
		versionTTL: 24 * time.Hour,
	}
}

func (r *RedisCache) Get(ctx context.Context, userID uuid.UUID) (Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, ErrCacheMiss
	}
	if err != nil {
		return Cart{}, fmt.Errorf("redis get failed: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return c, nil
}

func (r *RedisCache) Version(ctx context.Context, userID uuid.UUID) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get version failed: %w", err)
	}
	return v, nil
}

func (r *RedisCache) Set(ctx context.Context, c Cart, version int64) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// 15 to 19 minutes
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	vKey := versionKey(c.UserID)

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return ErrStaleCart
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(c.UserID), data, ttl)
			return nil
		})
		return err
	}, vKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleCart), errors.Is(err, redis.TxFailedErr):
		return ErrStaleCart
	default:
		return fmt.Errorf("redis set failed: %w", err)
	}
}

// Delete bumps the version before dropping the entry.
func (r *RedisCache) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(userID))
		pipe.Expire(ctx, versionKey(userID), r.versionTTL)
		pipe.Del(ctx, cacheKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:%s", userID)
}

func versionKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:%s:ver", userID)
}

type noopCache struct{}

// NewNoopCache always misses; used when redis is not configured.
func NewNoopCache() Cache {
	return noopCache{}
}

func (noopCache) Get(context.Context, uuid.UUID) (Cart, error) { return Cart{}, ErrCacheMiss }
func (noopCache) Version(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (noopCache) Set(context.Context, Cart, int64) error { return nil }
func (noopCache) Delete(context.Context, uuid.UUID) error { return nil }
