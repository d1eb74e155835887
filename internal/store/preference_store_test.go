package store_test

import (
	"testing"

	"github.com/verdantops/ecodesk/internal/auth"
	"github.com/verdantops/ecodesk/internal/store"
	"github.com/verdantops/ecodesk/internal/testutil"
)

func TestPreferenceStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	passwordHash, _ := auth.HashPassword("password123")
	user, _ := s.CreateUser("prefuser", passwordHash, "user")

	t.Run("Get unset preference returns nil", func(t *testing.T) {
		pref, err := s.GetPreference(user.ID, "theme")
		if err != nil {
			t.Fatalf("GetPreference failed: %v", err)
		}
		if pref != nil {
			t.Errorf("Expected nil for unset preference, got %+v", pref)
		}
	})

	t.Run("Set and get preference", func(t *testing.T) {
		if err := s.SetPreference(user.ID, "theme", `{"mode":"dark"}`); err != nil {
			t.Fatalf("SetPreference failed: %v", err)
		}

		pref, err := s.GetPreference(user.ID, "theme")
		if err != nil {
			t.Fatalf("GetPreference failed: %v", err)
		}
		if pref == nil || pref.Value != `{"mode":"dark"}` {
			t.Errorf("Unexpected preference: %+v", pref)
		}
	})

	t.Run("Set overwrites existing value", func(t *testing.T) {
		if err := s.SetPreference(user.ID, "theme", `{"mode":"light"}`); err != nil {
			t.Fatalf("SetPreference (overwrite) failed: %v", err)
		}

		pref, err := s.GetPreference(user.ID, "theme")
		if err != nil {
			t.Fatalf("GetPreference failed: %v", err)
		}
		if pref.Value != `{"mode":"light"}` {
			t.Errorf("Expected overwritten value, got %q", pref.Value)
		}
	})

	t.Run("List preferences", func(t *testing.T) {
		s.SetPreference(user.ID, "sidebar", `{"collapsed":true}`)

		prefs, err := s.ListPreferences(user.ID)
		if err != nil {
			t.Fatalf("ListPreferences failed: %v", err)
		}
		if len(prefs) != 2 {
			t.Errorf("Expected 2 preferences, got %d", len(prefs))
		}
	})
}
