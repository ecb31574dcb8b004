package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestConnectPostgresRequiresDSN(t *testing.T) {
	if _, err := ConnectPostgres(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestConnectPostgresPingFailure(t *testing.T) {
	origPing := pingPool
	t.Cleanup(func() { pingPool = origPing })
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return errors.New("refused")
	}

	if _, err := ConnectPostgres(context.Background(), "postgres://user@localhost:1/db"); err == nil {
		t.Fatal("expected ping failure to be returned")
	}
}

func TestConnectPostgresSuccess(t *testing.T) {
	origPing := pingPool
	t.Cleanup(func() { pingPool = origPing })
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error { return nil }

	pool, err := ConnectPostgres(context.Background(), "postgres://user@localhost:1/db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pool.Close()
}
