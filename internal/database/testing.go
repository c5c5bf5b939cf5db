package database

import (
	"context"
	"path/filepath"
	"testing"
)

// NewTestDB returns a migrated SQLite database in a temp directory that is
// closed when the test ends.
func NewTestDB(t testing.TB) *DB {
	t.Helper()

	db, err := NewSQLiteConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
