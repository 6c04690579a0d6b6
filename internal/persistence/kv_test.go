package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketflex/internal/config"
)

// exerciseKV checks the get/set/remove contract every backend must honor.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "tickets")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "tickets", `[{"id":1}]`))
	got, err := kv.Get(ctx, "tickets")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, got)

	require.NoError(t, kv.Set(ctx, "tickets", `[]`))
	got, err = kv.Get(ctx, "tickets")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	require.NoError(t, kv.Remove(ctx, "tickets"))
	_, err = kv.Get(ctx, "tickets")
	assert.ErrorIs(t, err, ErrNotFound)

	// removing an absent key is not an error
	require.NoError(t, kv.Remove(ctx, "tickets"))
	require.NoError(t, kv.Ping(ctx))
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestMemoryKVKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	require.NoError(t, kv.Set(ctx, "users", "[]"))
	require.NoError(t, kv.Set(ctx, "ticketapp_session", "{}"))
	require.NoError(t, kv.Remove(ctx, "users"))

	got, err := kv.Get(ctx, "ticketapp_session")
	require.NoError(t, err)
	assert.Equal(t, "{}", got)
}

func TestNewKV(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		kv, err := NewKV(config.StoreConfig{Driver: config.StoreDriverMemory}, Backends{})
		require.NoError(t, err)
		assert.IsType(t, &MemoryKV{}, kv)
	})

	t.Run("redis without client", func(t *testing.T) {
		_, err := NewKV(config.StoreConfig{Driver: config.StoreDriverRedis}, Backends{})
		assert.Error(t, err)
	})

	t.Run("postgres without pool", func(t *testing.T) {
		_, err := NewKV(config.StoreConfig{Driver: config.StoreDriverPostgres}, Backends{Postgres: &Postgres{}})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewKV(config.StoreConfig{Driver: "etcd"}, Backends{})
		assert.Error(t, err)
	})
}

func TestBackendsRefuseToStartUnconnected(t *testing.T) {
	ctx := context.Background()

	_, err := NewPostgres(ctx, config.PostgresConfig{}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewRedis(ctx, config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	assert.Error(t, err)
}

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_index.sql", "0001_kv_entries.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0003_dir.sql"), 0o700))

	names, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_kv_entries.sql", "0002_index.sql"}, names)

	_, err = migrationFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	names, err = migrationFiles("../../migrations")
	require.NoError(t, err)
	assert.Contains(t, names, "0001_kv_entries.sql")
}

func TestRedisKVIntegration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	exerciseKV(t, NewRedisKV(client, "test-"+uuid.NewString()+":"))
}

func TestPostgresKVIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool, "../../migrations", zap.NewNop()))
	exerciseKV(t, NewPostgresKV(pool, "test-"+uuid.NewString()+":"))
}
