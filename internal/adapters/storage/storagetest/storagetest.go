// Package storagetest opens migrated in-memory databases for tests.
package storagetest

import (
	"database/sql"
	"testing"

	"schoolhub/internal/adapters/storage"
)

// Open returns a fresh migrated in-memory database closed at test cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	db, err := storage.Open(":memory:", 1)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
