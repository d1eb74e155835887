package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateTargetName(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		expectError bool
	}{
		{"valid pascal name", "UnitConversion", false},
		{"valid with digits", "EfDetailedG2", false},
		{"single word", "Widgets", false},
		{"empty", "", true},
		{"traversal", "../etc", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"space", "Unit Conversion", true},
		{"dash", "unit-conversion", true},
		{"leading digit", "2Units", true},
		{"too long", string(make([]byte, 129)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTargetName(tt.target)
			if tt.expectError && err == nil {
				t.Errorf("Expected error for %q but got none", tt.target)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error for %q but got: %v", tt.target, err)
			}
		})
	}
}

func TestValidateWorkspaceRoot(t *testing.T) {
	t.Run("existing directory", func(t *testing.T) {
		if err := ValidateWorkspaceRoot(t.TempDir()); err != nil {
			t.Errorf("Expected no error for existing directory, got: %v", err)
		}
	})

	t.Run("missing directory is created", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "console", "workspace")
		if err := ValidateWorkspaceRoot(root); err != nil {
			t.Errorf("Expected no error for creatable directory, got: %v", err)
		}
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			t.Errorf("Expected %s to exist as a directory after validation", root)
		}
	})

	t.Run("path is a file", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "not_a_dir")
		file, err := os.Create(filePath)
		if err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		file.Close()

		if err := ValidateWorkspaceRoot(filePath); err == nil {
			t.Error("Expected an error when workspace root is a file")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if err := ValidateWorkspaceRoot(""); err == nil {
			t.Error("Expected an error for empty workspace root")
		}
	})
}
