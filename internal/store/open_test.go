package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tckz/visitor-counter/internal/config"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.Store{Backend: config.BackendLocal})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	mr := miniredis.RunT(t)
	s, err = Open(ctx, config.Store{Backend: config.BackendRedis, RedisAddr: mr.Addr(), RedisKeyPrefix: "vc:"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.IsType(t, &RedisStore{}, s)

	_, err = s.Add(ctx, "home", 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists("vc:home"))

	_, err = Open(ctx, config.Store{Backend: "cassandra"})
	assert.ErrorContains(t, err, "unknown backend")
}
