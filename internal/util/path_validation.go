package util

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// targetNamePattern matches the PascalCase names produced by the generator's
// name derivation. Anything else arriving in a request path is rejected
// before it can reach the filesystem.
var targetNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// ValidateTargetName checks that a target name is safe to derive artifact
// paths from. Names arrive via URL parameters, so traversal characters are
// rejected outright.
func ValidateTargetName(name string) error {
	if name == "" {
		return fmt.Errorf("target name cannot be empty")
	}
	if len(name) > 128 {
		return fmt.Errorf("target name too long")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("target name contains invalid path characters")
	}
	if !targetNamePattern.MatchString(name) {
		return fmt.Errorf("target name must be alphanumeric, got %q", name)
	}
	return nil
}

// ValidateWorkspaceRoot checks that the workspace root is a usable directory.
// If the path doesn't exist it is created; if it exists it must be a
// writable directory.
func ValidateWorkspaceRoot(root string) error {
	if root == "" {
		return fmt.Errorf("workspace root cannot be empty")
	}

	cleanRoot := filepath.Clean(root)
	info, err := os.Stat(cleanRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access workspace root: %w", err)
		}
		if err := os.MkdirAll(cleanRoot, 0755); err != nil {
			return fmt.Errorf("cannot create workspace root: %w", err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("workspace root exists but is not a directory: %s", cleanRoot)
	}

	return checkWritePermission(cleanRoot)
}

// checkWritePermission checks if we have write permission to a directory
// by creating and removing a probe file.
func checkWritePermission(dirPath string) error {
	probe := filepath.Join(dirPath, ".ecodesk_write_check")
	file, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("no write permission for %s: %w", dirPath, err)
	}
	file.Close()

	os.Remove(probe)
	return nil
}
