package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verdantops/ecodesk/internal/generator"
	"github.com/verdantops/ecodesk/internal/models"
)

// SeedArtifact writes a placeholder artifact of the given kind into a
// workspace, so verification and rollback paths can be exercised without
// running a full pipeline.
func SeedArtifact(t *testing.T, workspaceRoot string, kind models.ArtifactKind, tableName string) string {
	t.Helper()

	names := generator.DeriveNames(tableName)
	rel, err := generator.ArtifactPath(kind, names)
	if err != nil {
		t.Fatalf("Failed to derive artifact path: %v", err)
	}

	path := filepath.Join(workspaceRoot, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create artifact directory: %v", err)
	}
	if err := os.WriteFile(path, []byte("// placeholder\n"), 0644); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}
	return path
}
