// Package pgtest provides isolated, migrated Postgres databases for tests.
package pgtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/peterldowns/pgtestdb"
	"github.com/peterldowns/pgtestdb/migrators/golangmigrator"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func config() pgtestdb.Config {
	return pgtestdb.Config{
		DriverName: "pgx",
		User:       envOr("PGTEST_USER", "coachhub"), // local dev pg user
		Password:   envOr("PGTEST_PASSWORD", "coachhub"),
		Host:       envOr("PGTEST_HOST", "localhost"),
		Port:       envOr("PGTEST_PORT", "5433"),
		Database:   envOr("PGTEST_DB", "postgres"),
		Options:    "sslmode=disable",
	}
}

// NewDB returns a connection pool to a unique and isolated test database,
// fully migrated from migrationsDir. The test is skipped when no server is reachable.
func NewDB(t *testing.T, migrationsDir string) *pgxpool.Pool {
	t.Helper()
	conf := config()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := pgx.Connect(ctx, conf.URL())
	if err != nil {
		t.Skipf("postgres not reachable at %s:%s: %v", conf.Host, conf.Port, err)
	}
	conn.Close(ctx)

	gm := golangmigrator.New(migrationsDir)
	testConf := pgtestdb.Custom(t, conf, gm)

	pool, err := pgxpool.New(context.Background(), testConf.URL())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
	})
	return pool
}
