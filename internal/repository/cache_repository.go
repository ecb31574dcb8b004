package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market-oracle/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const createOracleCacheTable = `
CREATE TABLE IF NOT EXISTS oracle_cache (
    key         TEXT        PRIMARY KEY,
    value       BYTEA       NOT NULL,
    expires_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CacheRepository is a cache.Store over the oracle_cache table. Rows are
// upserted and never deleted.
type CacheRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewCacheRepository(pool PgxPool, tracer trace.Tracer) *CacheRepository {
	return &CacheRepository{pool: pool, tracer: tracer}
}

func (r *CacheRepository) RunMigrations(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "cache-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createOracleCacheTable)
	return err
}

func (r *CacheRepository) Get(ctx context.Context, key string) (domain.CacheEntry, bool, error) {
	ctx, span := r.tracer.Start(ctx, "cache-repo.get")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", key))

	entry := domain.CacheEntry{Key: key}
	err := r.pool.QueryRow(ctx,
		`SELECT value, expires_at FROM oracle_cache WHERE key = $1`,
		key,
	).Scan(&entry.Value, &entry.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CacheEntry{}, false, nil
	}
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("postgres: get %s: %w", key, err)
	}
	return entry, true, nil
}

func (r *CacheRepository) Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	ctx, span := r.tracer.Start(ctx, "cache-repo.put")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", key))

	_, err := r.pool.Exec(ctx,
		`INSERT INTO oracle_cache (key, value, expires_at, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (key) DO UPDATE SET
		     value = EXCLUDED.value,
		     expires_at = EXCLUDED.expires_at,
		     updated_at = EXCLUDED.updated_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: put %s: %w", key, err)
	}
	return nil
}
