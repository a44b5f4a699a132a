package dashboard

import (
	"context"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// CacheKey prefixes the serialized payload. Bump the version when its shape changes.
const CacheKey = "optica:dashboard:v1"

// GenerationKey counts invalidations. Payloads are stored under the
// generation that was current when their computation started, so a payload
// computed before a write can never be read after that write's Invalidate.
const GenerationKey = CacheKey + ":gen"

// PayloadKey is where the payload of generation gen lives.
func PayloadKey(gen int64) string {
	return CacheKey + ":" + strconv.FormatInt(gen, 10)
}

// Cache stores the rendered payload between recomputations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr atomically adds one to the integer at key, starting from zero.
	Incr(ctx context.Context, key string) (int64, error)
}

type redisCache struct {
	rdb *goredis.Client
}

func NewRedisCache(rdb *goredis.Client) Cache {
	return &redisCache{rdb: rdb}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

func (c *redisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

// NopCache never holds anything; every read recomputes.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopCache) Delete(context.Context, string) error                     { return nil }
func (NopCache) Incr(context.Context, string) (int64, error)              { return 0, nil }
