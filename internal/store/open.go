package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"github.com/tckz/visitor-counter/internal/config"
)

// NewRedisClient uses the same pool settings for the store and the delivery marker.
func NewRedisClient(addr string) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{addr},
		DialTimeout:  time.Second * 2,
		ReadTimeout:  time.Second * 2,
		WriteTimeout: time.Second * 2,
		PoolSize:     200,
		PoolTimeout:  time.Second * 5,
	})
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.BackendLocal:
		return NewLocalStore(), nil
	case config.BackendRedis:
		return NewRedisStore(NewRedisClient(cfg.RedisAddr), cfg.RedisKeyPrefix), nil
	case config.BackendDynamoDB:
		ac, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("awsconfig.LoadDefaultConfig: %w", err)
		}
		return NewDynamoStore(dynamodb.NewFromConfig(ac), cfg.Table), nil
	case config.BackendDatastore:
		cl, err := datastore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("datastore.NewClient: %w", err)
		}
		return NewDatastoreStore(cl, cfg.Table, cfg.DatastoreNamespace), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}
