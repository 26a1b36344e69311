// Package dbtest starts a throwaway PostgreSQL container for integration
// tests. Tests using it are skipped under -short.
package dbtest

import (
	"context"
	"database/sql"
	"stickynotes/internal/database"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	dbName     = "stickynotes"
	dbUser     = "user"
	dbPassword = "password"
)

// StartPostgres runs a migrated database and returns its connection string.
func StartPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("could not terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("could not read connection string: %v", err)
	}
	if err := database.MigrateUp(dsn); err != nil {
		t.Fatalf("could not migrate: %v", err)
	}
	return dsn
}

// Open returns a pool on a fresh migrated database, closed at cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	dsn := StartPostgres(t)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("could not open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
