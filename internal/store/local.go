package store

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"
)

var _ Store = (*LocalStore)(nil)

// LocalStore keeps counters in process memory. Counts are lost on restart.
type LocalStore struct {
	cache *cache.Cache
}

func NewLocalStore() *LocalStore {
	return &LocalStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *LocalStore) Get(ctx context.Context, id string) (Decimal, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return "", ErrNotFound
	}
	n, ok := v.(int64)
	if !ok {
		return "", fmt.Errorf("unexpected value type %T for %q", v, id)
	}
	return DecimalFromInt(n), nil
}

func (s *LocalStore) PutIfAbsent(ctx context.Context, id string, initial int64) error {
	if err := s.cache.Add(id, initial, cache.NoExpiration); err != nil {
		return ErrExists
	}
	return nil
}

func (s *LocalStore) Add(ctx context.Context, id string, delta int64) (Decimal, error) {
	// No-op when the id already has a count.
	_ = s.cache.Add(id, int64(0), cache.NoExpiration)

	n, err := s.cache.IncrementInt64(id, delta)
	if err != nil {
		return "", fmt.Errorf("cache.IncrementInt64: %w", err)
	}
	return DecimalFromInt(n), nil
}

func (s *LocalStore) Close() error {
	return nil
}
