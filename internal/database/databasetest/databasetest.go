// Package databasetest provides a migrated and seeded SQLite database for
// tests in other packages.
package databasetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/iliyamo/auth-rbac/internal/config"
	"github.com/iliyamo/auth-rbac/internal/database"
)

// New opens a temp-file SQLite database, applies the embedded migrations
// and the default seed.  The database is closed when the test ends.
func New(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(config.DBConfig{
		Driver: string(database.SQLite),
		Path:   filepath.Join(t.TempDir(), "auth-test.db"),
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	if err := db.Seed(ctx); err != nil {
		t.Fatalf("seeding test db: %v", err)
	}
	return db
}
