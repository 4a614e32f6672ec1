// Package idempotency records one-shot claims on keys such as booking
// submission tokens.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmptyKey is returned when claiming a blank key.
var ErrEmptyKey = errors.New("idempotency: empty key")

// Store claims keys. Claim returns true only for the first caller of a key
// within its retention window.
type Store interface {
	Claim(ctx context.Context, key string) (bool, error)
}

// MemoryStore keeps claims in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	claims map[string]time.Time
}

// NewMemoryStore returns an in-memory store. A ttl of zero keeps claims for
// the life of the process.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:    ttl,
		now:    time.Now,
		claims: make(map[string]time.Time),
	}
}

func (s *MemoryStore) Claim(ctx context.Context, key string) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expires, ok := s.claims[key]; ok && (expires.IsZero() || now.Before(expires)) {
		return false, nil
	}
	var expires time.Time
	if s.ttl > 0 {
		expires = now.Add(s.ttl)
	}
	s.claims[key] = expires
	return true, nil
}

// Run prunes expired claims every interval until ctx is done. It is a no-op
// when the store keeps claims forever.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = s.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune()
		}
	}
}

// Len returns the number of claims held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claims)
}

// Prune drops expired claims and returns how many were removed.
func (s *MemoryStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, expires := range s.claims {
		if !expires.IsZero() && !now.Before(expires) {
			delete(s.claims, key)
			removed++
		}
	}
	return removed
}

// RedisStore claims keys with SET NX so claims are shared across instances.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps client. Keys are stored under prefix.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) Claim(ctx context.Context, key string) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, ErrEmptyKey
	}
	if s.client == nil {
		return false, fmt.Errorf("idempotency: redis client not configured")
	}
	ok, err := s.client.SetNX(ctx, s.prefix+key, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency: claim %s: %w", key, err)
	}
	return ok, nil
}
