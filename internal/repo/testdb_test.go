package repo

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

// newTestDB opens a throwaway SQLite database with the full schema in a
// per-test temp dir.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
