package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// NewClient parses redisURL (e.g. "redis://localhost:6379/0"), installs the
// given hooks in order and verifies the connection.
func NewClient(ctx context.Context, redisURL string, hooks ...goredis.Hook) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(opts)
	for _, h := range hooks {
		rdb.AddHook(h)
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}
