package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(client, "")
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStore(t *testing.T) {
	s, _ := newTestRedisStore(t)
	testStore(t, s)
}

func TestRedisStore_KeyLayout(t *testing.T) {
	s, mr := newTestRedisStore(t)

	_, err := s.Add(context.Background(), "home", 1)
	require.NoError(t, err)

	got, err := mr.Get("visitor_count:home")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestRedisStore_Unreachable(t *testing.T) {
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}), "")
	t.Cleanup(func() { s.Close() })

	_, err := s.Add(context.Background(), "home", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.IncrBy")
}

func TestRedisStore_NonInteger(t *testing.T) {
	s, mr := newTestRedisStore(t)
	require.NoError(t, mr.Set("visitor_count:broken", "abc"))

	_, err := s.Get(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
