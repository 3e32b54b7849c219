// Package config reads the counter settings from the environment.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const (
	BackendLocal     = "local"
	BackendRedis     = "redis"
	BackendDynamoDB  = "dynamodb"
	BackendDatastore = "datastore"
)

var Backends = []string{BackendLocal, BackendRedis, BackendDynamoDB, BackendDatastore}

type Store struct {
	Backend string
	// Table is the DynamoDB table or the Datastore kind.
	Table              string
	RedisAddr          string
	RedisKeyPrefix     string
	DatastoreNamespace string
	ProjectID          string
}

type Config struct {
	Store        Store
	LogLevel     string
	EnsureRecord bool
	Listen       string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("COUNTER")
	v.AutomaticEnv()

	v.SetDefault("backend", BackendDynamoDB)
	v.SetDefault("table", "visitor_count")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_key_prefix", "visitor_count:")
	v.SetDefault("datastore_namespace", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("ensure_record", false)
	v.SetDefault("listen", ":8080")

	// Unprefixed, shared with the rest of the GCP tooling.
	_ = v.BindEnv("project_id", "PROJECT_ID", "GOOGLE_CLOUD_PROJECT")
	return v
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	godotenv.Load()
	return FromViper(newViper())
}

func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Store: Store{
			Backend:            v.GetString("backend"),
			Table:              v.GetString("table"),
			RedisAddr:          v.GetString("redis_addr"),
			RedisKeyPrefix:     v.GetString("redis_key_prefix"),
			DatastoreNamespace: v.GetString("datastore_namespace"),
			ProjectID:          v.GetString("project_id"),
		},
		LogLevel:     v.GetString("log_level"),
		EnsureRecord: v.GetBool("ensure_record"),
		Listen:       v.GetString("listen"),
	}
	if err := cfg.Store.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (s Store) Validate() error {
	if !lo.Contains(Backends, s.Backend) {
		return fmt.Errorf("unknown backend: %s, must be one of %v", s.Backend, Backends)
	}
	if s.Backend == BackendRedis && s.RedisAddr == "" {
		return fmt.Errorf("backend %s requires COUNTER_REDIS_ADDR", s.Backend)
	}
	return nil
}

// Override applies non-empty command-line values on top of the environment.
func (c *Config) Override(logLevel, backend, listen string) {
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if backend != "" {
		c.Store.Backend = backend
	}
	if listen != "" {
		c.Listen = listen
	}
}
