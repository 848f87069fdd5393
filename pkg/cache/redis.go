package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
)

// DefaultRedisPrefix namespaces every key written by RedisCache.
const DefaultRedisPrefix = "railgen:"

// RedisCache stores entries in Redis with native key expiry.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to the server named by url
// (redis://[user:password@]host:port/db) and pings it.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, rgerrors.Wrap(rgerrors.ErrCodeStorage,
			fmt.Errorf("%w: %w", ErrUnavailable, err), "connect to redis at %s", opts.Addr)
	}
	return &RedisCache{client: client, prefix: DefaultRedisPrefix}, nil
}

// NewRedisCacheFromClient wraps an existing client. An empty prefix keeps
// keys unprefixed.
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Retryable(rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "redis get"))
	}
	return data, true, nil
}

// Set uses SET with EX; a zero ttl stores the key without expiry.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return Retryable(rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "redis set"))
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return Retryable(rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "redis del"))
	}
	return nil
}

func (c *RedisCache) Close() error { return c.client.Close() }

var _ Cache = (*RedisCache)(nil)
