// Package testutil provides shared helpers for integration tests.
// Every helper skips the calling test when its backing service is not
// configured, so the unit suite runs without Postgres or Redis.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/gbsb/tripmate/migrations"
)

const (
	// DatabaseURLEnv names the Postgres DSN used by integration tests.
	DatabaseURLEnv = "TEST_DATABASE_URL"
	// RedisAddrEnv names the Redis address used by integration tests.
	RedisAddrEnv = "TEST_REDIS_ADDR"
)

// NewPool opens a *pgxpool.Pool against TEST_DATABASE_URL. The pool is closed
// when the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := requireEnv(t, DatabaseURLEnv)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewMigratedPool is NewPool with every pending migration applied first.
// Use it from packages that have no TestMain of their own.
func NewMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool := NewPool(t)
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := migrations.NewProvider(db)
	if err != nil {
		t.Fatalf("testutil.NewMigratedPool: %v", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		t.Fatalf("testutil.NewMigratedPool: run migrations: %v", err)
	}
	return pool
}

// NewSQLDB returns a *sql.DB backed by a fresh pool, for goose.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	db := stdlib.OpenDBFromPool(NewPool(t))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// MustOpenSQLDB opens a *sql.DB for dsn and panics on any error. It is meant
// for TestMain, where no *testing.T exists. The caller closes the DB.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: open: " + err.Error())
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		panic("testutil.MustOpenSQLDB: ping: " + err.Error())
	}
	return db
}

// NewRedis connects to TEST_REDIS_ADDR and closes the client when the test
// finishes.
func NewRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := requireEnv(t, RedisAddrEnv)

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("testutil.NewRedis: ping: %v", err)
	}
	return rdb
}

func requireEnv(t *testing.T, key string) string {
	t.Helper()
	v := os.Getenv(key)
	if v == "" {
		t.Skipf("%s not set; skipping integration test", key)
	}
	return v
}
