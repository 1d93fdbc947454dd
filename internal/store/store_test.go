package store

import (
	"database/sql"
	"testing"

	"github.com/medmole/medmole/internal/database"
	"github.com/medmole/medmole/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// Ensure foreign keys are enforced (modernc/sqlite may not honor DSN param for :memory:)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(email, "Test User", "not-a-real-hash")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u
}
