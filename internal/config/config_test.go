package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("PROJECT_ID", "my-project")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, BackendDynamoDB, cfg.Store.Backend)
	assert.Equal(t, "visitor_count", cfg.Store.Table)
	assert.Equal(t, "visitor_count:", cfg.Store.RedisKeyPrefix)
	assert.Equal(t, "my-project", cfg.Store.ProjectID)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.False(t, cfg.EnsureRecord)
}

func TestFromViper_Env(t *testing.T) {
	t.Setenv("PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("COUNTER_BACKEND", "redis")
	t.Setenv("COUNTER_REDIS_ADDR", "localhost:6379")
	t.Setenv("COUNTER_REDIS_KEY_PREFIX", "vc:")
	t.Setenv("COUNTER_LOG_LEVEL", "debug")
	t.Setenv("COUNTER_ENSURE_RECORD", "true")
	t.Setenv("COUNTER_LISTEN", "127.0.0.1:9000")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, Store{
		Backend:        BackendRedis,
		Table:          "visitor_count",
		RedisAddr:      "localhost:6379",
		RedisKeyPrefix: "vc:",
	}, cfg.Store)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.EnsureRecord)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
}

func TestStoreValidate(t *testing.T) {
	tests := []struct {
		name    string
		store   Store
		wantErr string
	}{
		{name: "local", store: Store{Backend: BackendLocal}},
		{name: "datastore", store: Store{Backend: BackendDatastore}},
		{name: "unknown", store: Store{Backend: "mysql"}, wantErr: "unknown backend: mysql"},
		{name: "redis without addr", store: Store{Backend: BackendRedis}, wantErr: "COUNTER_REDIS_ADDR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.store.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOverride(t *testing.T) {
	t.Setenv("COUNTER_LOG_LEVEL", "warn")
	t.Setenv("COUNTER_BACKEND", "local")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	cfg.Override("", "", "")
	assert.Equal(t, "warn", cfg.LogLevel, "unset flags keep the environment")
	assert.Equal(t, BackendLocal, cfg.Store.Backend)
	assert.Equal(t, ":8080", cfg.Listen)

	cfg.Override("debug", BackendDatastore, ":9090")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, BackendDatastore, cfg.Store.Backend)
	assert.Equal(t, ":9090", cfg.Listen)
}
