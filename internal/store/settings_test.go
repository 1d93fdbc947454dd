package store

import "testing"

func TestSettingsSetGetAll(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice@example.com")
	s := NewSettingsStore(db)

	if err := s.Set(user.ID, "language", "en"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(user.ID, "theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Overwrite
	if err := s.Set(user.ID, "theme", "light"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := s.Get(user.ID, "theme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "light" {
		t.Errorf("theme = %q, want light", got)
	}

	all, err := s.All(user.ID)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 || all["language"] != "en" {
		t.Errorf("all = %v", all)
	}
}

func TestSettingsScopedByUser(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	s := NewSettingsStore(db)

	if err := s.Set(alice.ID, "language", "fr"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := s.Get(bob.ID, "language")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "" {
		t.Errorf("bob's language = %q, want empty", got)
	}
}

func TestSettingsGetMissing(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice@example.com")
	s := NewSettingsStore(db)

	got, err := s.Get(user.ID, "language")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "" {
		t.Errorf("missing key = %q, want empty", got)
	}
}
