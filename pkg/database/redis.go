package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when addr is empty or the server does not answer,
// in which case callers run without a cache.
func ConnectRedis(addr string) *redis.Client {
	if addr == "" {
		slog.Warn("REDIS_ADDR not set, workspace cache disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("failed to connect to redis, workspace cache disabled", "addr", addr, "error", err)
		rdb.Close()
		return nil
	}

	slog.Info("connected to redis", "addr", addr)
	return rdb
}
