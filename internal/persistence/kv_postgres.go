package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV stores entries in the kv_entries table (see migrations/).
type PostgresKV struct {
	pool   *pgxpool.Pool
	prefix string
}

// NewPostgresKV wraps pool; prefix scopes one logical session namespace.
func NewPostgresKV(pool *pgxpool.Pool, prefix string) *PostgresKV {
	return &PostgresKV{pool: pool, prefix: prefix}
}

func (p *PostgresKV) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM kv_entries WHERE key=$1`

	var val string
	if err := p.pool.QueryRow(ctx, query, p.prefix+key).Scan(&val); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return val, nil
}

func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	const query = `
        INSERT INTO kv_entries (key, value)
        VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`

	_, err := p.pool.Exec(ctx, query, p.prefix+key, value)
	return err
}

func (p *PostgresKV) Remove(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_entries WHERE key=$1`

	_, err := p.pool.Exec(ctx, query, p.prefix+key)
	return err
}

func (p *PostgresKV) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
