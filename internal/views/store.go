package views

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
)

// DedupStore records which visitors have been counted for a report within
// a window. Claim must be an atomic insert-if-absent.
type DedupStore interface {
	Claim(ctx context.Context, reportID, fingerprint string, window time.Duration) (bool, error)
	Release(ctx context.Context, reportID, fingerprint string) error
}

// RedisStore keeps claims as expiring Redis keys.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed dedup store.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Key returns the Redis key for a claim.
func (s *RedisStore) Key(reportID, fingerprint string) string {
	return fmt.Sprintf("%s:views:%s:%s", s.prefix, reportID, fingerprint)
}

// Claim sets the key with NX and a TTL of window.
func (s *RedisStore) Claim(ctx context.Context, reportID, fingerprint string, window time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.Key(reportID, fingerprint), 1, window).Result()
	if err != nil {
		return false, domain.StorageError("redis claim view", err)
	}
	return ok, nil
}

// Release deletes the claim key.
func (s *RedisStore) Release(ctx context.Context, reportID, fingerprint string) error {
	if err := s.client.Del(ctx, s.Key(reportID, fingerprint)).Err(); err != nil {
		return domain.StorageError("redis release view", err)
	}
	return nil
}

// MemoryStore keeps claims in process memory. Only suitable for a single
// instance.
type MemoryStore struct {
	mu     sync.Mutex
	claims map[string]time.Time
	now    func() time.Time
}

// NewMemoryStore creates an in-memory dedup store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{claims: make(map[string]time.Time), now: time.Now}
}

func memoryKey(reportID, fingerprint string) string {
	return reportID + "\x00" + fingerprint
}

// Claim records the claim unless an unexpired one exists.
func (s *MemoryStore) Claim(_ context.Context, reportID, fingerprint string, window time.Duration) (bool, error) {
	key := memoryKey(reportID, fingerprint)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if expires, ok := s.claims[key]; ok && now.Before(expires) {
		return false, nil
	}
	s.claims[key] = now.Add(window)
	return true, nil
}

// Release removes a claim.
func (s *MemoryStore) Release(_ context.Context, reportID, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, memoryKey(reportID, fingerprint))
	return nil
}

// PurgeExpired drops expired claims.
func (s *MemoryStore) PurgeExpired(_ context.Context) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for key, expires := range s.claims {
		if !now.Before(expires) {
			delete(s.claims, key)
			n++
		}
	}
	return n, nil
}
