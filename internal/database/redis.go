package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/config"
)

// ErrEmptyRedisAddress is returned when Redis is enabled without an address.
var ErrEmptyRedisAddress = errors.New("redis address is required")

const redisConnectTimeout = 5 * time.Second

// NewRedis creates a Redis client and verifies it with a ping.
func NewRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyRedisAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
