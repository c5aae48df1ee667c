package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jafarshop/checkoutapi/internal/config"
)

const keyPrefix = "checkout"

// NewClient connects to redis and pings it
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	return rdb, nil
}

func key(parts ...string) string {
	k := keyPrefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}
