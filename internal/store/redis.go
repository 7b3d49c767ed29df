package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for RedisBackend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // Prepended to every key
}

// RedisBackend stores entries as plain Redis strings.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to Redis, retrying the initial ping with backoff.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	const attempts = 3
	backoff := 200 * time.Millisecond

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()

		if err == nil {
			return &RedisBackend{client: client, prefix: cfg.Prefix}, nil
		}
		if attempt < attempts {
			select {
			case <-ctx.Done():
				_ = client.Close()
				return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
