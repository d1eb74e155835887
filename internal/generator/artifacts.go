package generator

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/verdantops/ecodesk/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Generator renders the four source artifacts of a generated module into a
// console workspace.
type Generator struct {
	root      string
	version   string
	templates *template.Template
}

// NewGenerator parses the embedded artifact templates and binds the
// generator to a workspace root.
func NewGenerator(workspaceRoot, version string) (*Generator, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact templates: %w", err)
	}
	return &Generator{
		root:      workspaceRoot,
		version:   version,
		templates: tmpl,
	}, nil
}

// ArtifactPath returns the path of an artifact kind relative to the
// workspace root. Locations are fixed per kind; only the name stem varies
// with the target.
func ArtifactPath(kind models.ArtifactKind, names Names) (string, error) {
	switch kind {
	case models.ArtifactService:
		return filepath.Join("server", "services", names.Pascal+"Service.ts"), nil
	case models.ArtifactClient:
		return filepath.Join("web", "src", "api", names.Camel+"Client.ts"), nil
	case models.ArtifactRoutes:
		return filepath.Join("server", "routes", names.Kebab+".routes.ts"), nil
	case models.ArtifactUIConfig:
		return filepath.Join("web", "src", "config", names.Camel+"Config.ts"), nil
	default:
		return "", fmt.Errorf("unknown artifact kind %q", kind)
	}
}

type templateData struct {
	Names     Names
	BaseID    string
	TableID   string
	TableName string
	Section   string
	Fields    []models.FieldInfo
	Version   string
}

// Write renders the artifact of the given kind and writes it under the
// workspace root, creating parent directories as needed. It returns the
// absolute path written.
func (g *Generator) Write(kind models.ArtifactKind, names Names, spec models.TargetSpec, fields []models.FieldInfo) (string, error) {
	rel, err := ArtifactPath(kind, names)
	if err != nil {
		return "", err
	}

	data := templateData{
		Names:     names,
		BaseID:    spec.BaseID,
		TableID:   spec.TableID,
		TableName: names.Display,
		Section:   spec.Section,
		Fields:    fields,
		Version:   g.version,
	}

	var buf bytes.Buffer
	if err := g.templates.ExecuteTemplate(&buf, string(kind)+".tmpl", data); err != nil {
		return "", fmt.Errorf("failed to render %s artifact: %w", kind, err)
	}

	path := filepath.Join(g.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s artifact: %w", kind, err)
	}
	return path, nil
}

// Remove deletes the artifact of the given kind. A file that is already
// gone is not an error; cancellation recomputes its targets instead of
// trusting recorded paths.
func (g *Generator) Remove(kind models.ArtifactKind, names Names) error {
	rel, err := ArtifactPath(kind, names)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(g.root, rel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s artifact: %w", kind, err)
	}
	return nil
}

// Exists reports whether the artifact of the given kind is on disk.
func (g *Generator) Exists(kind models.ArtifactKind, names Names) (bool, error) {
	rel, err := ArtifactPath(kind, names)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(filepath.Join(g.root, rel))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Verify stats every artifact kind for the given names and returns the
// per-kind outcome. A write call reporting success is not trusted; this
// check is what populates a job result.
func (g *Generator) Verify(names Names) (map[models.ArtifactKind]bool, error) {
	out := make(map[models.ArtifactKind]bool, len(models.AllArtifactKinds))
	for _, kind := range models.AllArtifactKinds {
		ok, err := g.Exists(kind, names)
		if err != nil {
			return nil, err
		}
		out[kind] = ok
	}
	return out, nil
}

// AllCreated reports whether every artifact kind was verified on disk.
func AllCreated(files map[models.ArtifactKind]bool) bool {
	if len(files) == 0 {
		return false
	}
	for _, kind := range models.AllArtifactKinds {
		if !files[kind] {
			return false
		}
	}
	return true
}
