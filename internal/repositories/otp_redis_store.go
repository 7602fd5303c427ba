package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOtpStore is a Redis implementation of OtpStore. TTL handling and
// INCR atomicity come straight from Redis.
type RedisOtpStore struct {
	client *redis.Client
}

// NewRedisOtpStore creates a new instance of RedisOtpStore.
func NewRedisOtpStore(client *redis.Client) *RedisOtpStore {
	return &RedisOtpStore{
		client: client,
	}
}

// Exists reports whether a non-expired value is stored under key.
func (s *RedisOtpStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key %s: %w", key, err)
	}
	return n > 0, nil
}

// GetCount returns the counter under key, zero when absent.
func (s *RedisOtpStore) GetCount(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get counter %s: %w", key, err)
	}
	return n, nil
}

// Set stores a value under key with the given TTL.
func (s *RedisOtpStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Incr atomically increments the counter under key.
func (s *RedisOtpStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %w", key, err)
	}
	return n, nil
}

// Expire sets the TTL of an existing key.
func (s *RedisOtpStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("failed to expire key %s: %w", key, err)
	}
	return nil
}
