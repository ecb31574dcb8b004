package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		t.Fatalf("unexpected error loading embedded migrations: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "oracle_cache" {
		t.Fatalf("unexpected first migration: %d %s", migrations[0].Version, migrations[0].Name)
	}
	if migrations[1].Version != 2 {
		t.Fatalf("expected second migration version 2, got %d", migrations[1].Version)
	}
	if !strings.Contains(migrations[0].UpSQL, "oracle_cache") || migrations[0].DownSQL == "" {
		t.Fatal("expected oracle_cache up/down sql for first migration")
	}
}

func TestLoadMigrationsRejectsBadSets(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"empty", fstest.MapFS{}},
		{"bad name", fstest.MapFS{"migrations/first.up.sql": {Data: []byte("SELECT 1")}}},
		{"missing down", fstest.MapFS{"migrations/0001_a.up.sql": {Data: []byte("SELECT 1")}}},
		{"empty file", fstest.MapFS{
			"migrations/0001_a.up.sql":   {Data: []byte("  ")},
			"migrations/0001_a.down.sql": {Data: []byte("SELECT 1")},
		}},
		{"name conflict", fstest.MapFS{
			"migrations/0001_a.up.sql":   {Data: []byte("SELECT 1")},
			"migrations/0001_b.down.sql": {Data: []byte("SELECT 1")},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := loadMigrations(tc.fsys); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseSteps(t *testing.T) {
	if n, err := parseSteps(cmdDown, nil); err != nil || n != 1 {
		t.Fatalf("expected default of 1, got %d %v", n, err)
	}
	if n, err := parseSteps(cmdDown, []string{"3"}); err != nil || n != 3 {
		t.Fatalf("expected 3, got %d %v", n, err)
	}
	for _, bad := range []string{"0", "-1", "two"} {
		if _, err := parseSteps(cmdDown, []string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if n, err := parseSteps(cmdUp, []string{"ignored"}); err != nil || n != 1 {
		t.Fatalf("up ignores steps, got %d %v", n, err)
	}
}

func TestRunValidatesBeforeConnecting(t *testing.T) {
	orig := connectFunc
	defer func() { connectFunc = orig }()

	connects := 0
	connectFunc = func(context.Context, string) (migrationDB, func(), error) {
		connects++
		return nil, nil, errors.New("connection refused")
	}

	cases := []struct {
		args []string
		dsn  string
	}{
		{nil, "postgres://x"},
		{[]string{"sideways"}, "postgres://x"},
		{[]string{cmdDown, "zero"}, "postgres://x"},
		{[]string{cmdUp}, "  "},
	}
	for _, tc := range cases {
		if err := run(context.Background(), tc.args, tc.dsn); err == nil {
			t.Fatalf("expected error for %v", tc.args)
		}
	}
	if connects != 0 {
		t.Fatalf("invalid invocations must not connect, got %d", connects)
	}

	err := run(context.Background(), []string{cmdVersion}, "postgres://x")
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected connect error, got %v", err)
	}
}
