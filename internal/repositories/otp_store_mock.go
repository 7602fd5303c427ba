package repositories

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	count     int64
	expiresAt time.Time
}

// MemoryOtpStore is an in-memory implementation of OtpStore with TTL
// support. Tests override Now to move through expiry windows without
// sleeping.
type MemoryOtpStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	// Now is the clock used for expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// NewMemoryOtpStore creates a new instance of MemoryOtpStore.
func NewMemoryOtpStore() *MemoryOtpStore {
	return &MemoryOtpStore{
		entries: make(map[string]memoryEntry),
		Now:     time.Now,
	}
}

func (s *MemoryOtpStore) lookup(key string) (memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !s.Now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

// Exists reports whether a non-expired value is stored under key.
func (s *MemoryOtpStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.lookup(key)
	return ok, nil
}

// GetCount returns the counter under key, zero when absent or expired.
func (s *MemoryOtpStore) GetCount(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(key)
	if !ok {
		return 0, nil
	}
	return entry.count, nil
}

// Set stores a value under key with the given TTL.
func (s *MemoryOtpStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, _ := strconv.ParseInt(value, 10, 64)
	s.entries[key] = memoryEntry{
		value:     value,
		count:     count,
		expiresAt: s.Now().Add(ttl),
	}
	return nil
}

// Incr atomically increments the counter under key.
func (s *MemoryOtpStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, _ := s.lookup(key)
	entry.count++
	entry.value = strconv.FormatInt(entry.count, 10)
	s.entries[key] = entry
	return entry.count, nil
}

// Expire sets the TTL of an existing key.
func (s *MemoryOtpStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(key)
	if !ok {
		return nil
	}
	entry.expiresAt = s.Now().Add(ttl)
	s.entries[key] = entry
	return nil
}
