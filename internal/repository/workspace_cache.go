package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// WorkspaceCache holds serialized workspace documents by user id.
type WorkspaceCache interface {
	Get(ctx context.Context, userID string) ([]byte, bool, error)
	Set(ctx context.Context, userID string, data []byte) error
	Delete(ctx context.Context, userID string) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache keeps documents under "workspace:<user id>" with a TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) WorkspaceCache {
	return &redisCache{client: client, ttl: ttl}
}

func cacheKey(userID string) string {
	return "workspace:" + userID
}

func (c *redisCache) Get(ctx context.Context, userID string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *redisCache) Set(ctx context.Context, userID string, data []byte) error {
	return c.client.Set(ctx, cacheKey(userID), data, c.ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, userID string) error {
	return c.client.Del(ctx, cacheKey(userID)).Err()
}

type noCache struct{}

// NoCache is used when no redis address is configured.
func NoCache() WorkspaceCache { return noCache{} }

func (noCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noCache) Set(context.Context, string, []byte) error         { return nil }
func (noCache) Delete(context.Context, string) error              { return nil }
