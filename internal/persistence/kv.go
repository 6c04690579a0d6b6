package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/ticketflex/internal/config"
)

// ErrNotFound is returned by KV.Get when the key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// KV is a string-keyed, string-valued store with get/set/remove semantics,
// the same surface a browser's local storage offers.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Backends carries the live connections a KV may be built on.
type Backends struct {
	Postgres *Postgres
	Redis    *Redis
}

// NewKV selects the backend named by cfg.Driver.
func NewKV(cfg config.StoreConfig, backends Backends) (KV, error) {
	switch cfg.Driver {
	case config.StoreDriverMemory:
		return NewMemoryKV(), nil
	case config.StoreDriverRedis:
		if backends.Redis == nil || backends.Redis.Client == nil {
			return nil, errors.New("redis store selected but no client configured")
		}
		return NewRedisKV(backends.Redis.Client, cfg.KeyPrefix), nil
	case config.StoreDriverPostgres:
		if backends.Postgres.PoolHandle() == nil {
			return nil, errors.New("postgres store selected but no pool configured")
		}
		return NewPostgresKV(backends.Postgres.PoolHandle(), cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
