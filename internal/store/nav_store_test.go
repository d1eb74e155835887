package store_test

import (
	"testing"

	"github.com/verdantops/ecodesk/internal/store"
	"github.com/verdantops/ecodesk/internal/testutil"
)

func TestNavStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	t.Run("Ensure inserts new item", func(t *testing.T) {
		item, inserted, err := s.EnsureNavItem("Unit Conversion", "unit-conversion", "Reference Data")
		if err != nil {
			t.Fatalf("EnsureNavItem failed: %v", err)
		}
		if !inserted {
			t.Error("Expected a new nav item to be inserted")
		}
		if item.Position != 1 {
			t.Errorf("Expected first item in section at position 1, got %d", item.Position)
		}
	})

	t.Run("Ensure is idempotent per route", func(t *testing.T) {
		item, inserted, err := s.EnsureNavItem("Unit Conversion (again)", "unit-conversion", "Reference Data")
		if err != nil {
			t.Fatalf("EnsureNavItem failed: %v", err)
		}
		if inserted {
			t.Error("Expected existing nav item to be reused")
		}
		if item.Label != "Unit Conversion" {
			t.Errorf("Expected original label to be kept, got %q", item.Label)
		}
	})

	t.Run("Positions advance within a section", func(t *testing.T) {
		item, _, err := s.EnsureNavItem("Scope Categorisation", "scope-categorisation", "Reference Data")
		if err != nil {
			t.Fatalf("EnsureNavItem failed: %v", err)
		}
		if item.Position != 2 {
			t.Errorf("Expected position 2 in the same section, got %d", item.Position)
		}

		other, _, err := s.EnsureNavItem("Settings", "settings", "System")
		if err != nil {
			t.Fatalf("EnsureNavItem failed: %v", err)
		}
		if other.Position != 1 {
			t.Errorf("Expected position 1 in a fresh section, got %d", other.Position)
		}
	})

	t.Run("List and delete", func(t *testing.T) {
		items, err := s.ListNavItems()
		if err != nil {
			t.Fatalf("ListNavItems failed: %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("Expected 3 nav items, got %d", len(items))
		}

		if err := s.DeleteNavItem(items[0].ID); err != nil {
			t.Fatalf("DeleteNavItem failed: %v", err)
		}
		items, _ = s.ListNavItems()
		if len(items) != 2 {
			t.Errorf("Expected 2 nav items after delete, got %d", len(items))
		}
	})
}
