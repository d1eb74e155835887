package db_test

import (
	"testing"

	"github.com/verdantops/ecodesk/internal/testutil"
)

func TestForeignKeyCascadeDelete(t *testing.T) {
	// Setup test database with migrations already applied
	db := testutil.SetupTestDB(t)

	// Verify foreign keys are enabled
	var foreignKeysEnabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeysEnabled)
	if err != nil {
		t.Fatalf("Failed to check foreign keys status: %v", err)
	}
	if foreignKeysEnabled != 1 {
		t.Errorf("Foreign keys should be enabled, got: %d", foreignKeysEnabled)
	}

	// Create a user with a session and a preference
	_, err = db.Exec("INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, datetime('now'))",
		"testuser", "hash", "user")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	_, err = db.Exec("INSERT INTO sessions (token, user_id, expiry) VALUES (?, ?, datetime('now', '+7 days'))",
		"token123", 1)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	_, err = db.Exec("INSERT INTO preferences (user_id, key, value) VALUES (?, ?, ?)",
		1, "theme", `{"mode":"dark"}`)
	if err != nil {
		t.Fatalf("Failed to create test preference: %v", err)
	}

	// Delete the user and verify sessions and preferences cascade
	_, err = db.Exec("DELETE FROM users WHERE id = 1")
	if err != nil {
		t.Fatalf("Failed to delete user: %v", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sessions WHERE user_id = 1").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check sessions: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 sessions after user deletion, got %d", count)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM preferences WHERE user_id = 1").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check preferences: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 preferences after user deletion, got %d", count)
	}
}

func TestMigrationsCreateConsoleTables(t *testing.T) {
	db := testutil.SetupTestDB(t)

	for _, table := range []string{"users", "sessions", "preferences", "feature_flags", "nav_items"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %q to exist after migrations: %v", table, err)
		}
	}
}
