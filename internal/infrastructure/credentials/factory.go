package credentials

import (
	"context"
	"fmt"

	"github.com/rentora/access-layer/internal/core/ports"
	"github.com/rentora/access-layer/internal/infrastructure/config"
	"github.com/rentora/access-layer/internal/infrastructure/db/mongo"
	"github.com/rentora/access-layer/internal/infrastructure/db/redis"
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Closer releases whatever connection a backend holds.
type Closer func(ctx context.Context) error

func noopCloser(context.Context) error { return nil }

// New builds the CredentialStore named by cfg.Credentials.Backend.
func New(ctx context.Context, cfg *config.Config) (ports.CredentialStore, Closer, error) {
	switch cfg.Credentials.Backend {
	case BackendMemory:
		return NewMemoryStore(), noopCloser, nil

	case BackendFile, "":
		key, err := ParseKey(cfg.Credentials.Key)
		if err != nil {
			return nil, nil, err
		}
		store, err := NewFileStore(cfg.Credentials.Dir, key)
		if err != nil {
			return nil, nil, err
		}
		return store, noopCloser, nil

	case BackendRedis:
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, err
		}
		store := redis.NewCredentialStore(client, cfg.Redis.Prefix, cfg.Redis.TTL)
		return store, func(context.Context) error { return client.Close() }, nil

	case BackendMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		return mongo.NewCredentialStore(db), client.Disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unknown credential backend %q", cfg.Credentials.Backend)
	}
}
