package repositories

import (
	"context"
	"time"
)

// OtpStore is the expiring key-value store behind the OTP rate limiter:
// short-lived cooldown and block flags plus rolling daily counters. Incr
// must be atomic; a key incremented for the first time gets its TTL from a
// follow-up Expire call.
type OtpStore interface {
	// Exists reports whether a non-expired value is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// GetCount returns the counter under key, zero when absent or expired.
	GetCount(ctx context.Context, key string) (int64, error)
	// Set stores a value under key with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Incr atomically increments the counter under key and returns the new
	// value, starting from zero for an absent key.
	Incr(ctx context.Context, key string) (int64, error)
	// Expire sets the TTL of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
