// Package cache stores short-lived one-time codes in Redis.
//
// Entries carry a per-key TTL; expired and never-written keys are both
// reported as absent. Callers must treat absence as a normal outcome
// and only ErrUnavailable as an infrastructure fault.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otc:"

// ErrUnavailable wraps any Redis transport failure. Absence of a key is
// never reported through this error.
var ErrUnavailable = errors.New("code cache unavailable")

type CodeStore struct {
	rdb *redis.Client
}

func NewCodeStore(rdb *redis.Client) *CodeStore {
	return &CodeStore{rdb: rdb}
}

// Put writes value under key with a fresh TTL, overwriting any previous
// entry. Last write wins.
func (s *CodeStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get returns the value for key. The second return is false when the
// key is absent, expired, or already consumed; those cases are
// indistinguishable on purpose.
func (s *CodeStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, true, nil
}

// Invalidate removes key so a consumed code cannot be replayed while
// its TTL has not yet elapsed. Deleting an absent key is a no-op.
func (s *CodeStore) Invalidate(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
