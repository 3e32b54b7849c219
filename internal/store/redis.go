package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKeyPrefix = "visitor_count:"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps each counter as a plain integer string so INCRBY applies.
type RedisStore struct {
	prefix string
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisStore{prefix: prefix, client: client}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (Decimal, error) {
	v, err := s.client.Get(ctx, s.key(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis.Get: %w", err)
	}
	return DecimalFromInt(v), nil
}

func (s *RedisStore) PutIfAbsent(ctx context.Context, id string, initial int64) error {
	ok, err := s.client.SetNX(ctx, s.key(id), initial, 0).Result()
	if err != nil {
		return fmt.Errorf("redis.SetNX: %w", err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (s *RedisStore) Add(ctx context.Context, id string, delta int64) (Decimal, error) {
	v, err := s.client.IncrBy(ctx, s.key(id), delta).Result()
	if err != nil {
		return "", fmt.Errorf("redis.IncrBy: %w", err)
	}
	return DecimalFromInt(v), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
