package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ManifestFileName is the route registration table, relative to the
// workspace root.
const ManifestFileName = "routes/manifest.json"

// ManifestEntry is one mounted route in the registration table.
type ManifestEntry struct {
	RoutePath        string    `json:"route_path"`
	TargetName       string    `json:"target_name"`
	TableName        string    `json:"table_name"`
	BaseID           string    `json:"base_id"`
	TableID          string    `json:"table_id"`
	Section          string    `json:"section,omitempty"`
	GeneratorVersion string    `json:"generator_version"`
	RegisteredAt     time.Time `json:"registered_at"`
}

// routeManifest is the on-disk shape of routes/manifest.json.
type routeManifest struct {
	Version int             `json:"version"`
	Entries []ManifestEntry `json:"entries"`
}

// ManifestEditor maintains the registration table that mounts generated
// route modules. Mounting is idempotent: entries are matched by normalized
// route path, so re-running a pipeline never duplicates a mount. The editor
// serializes writers itself since two pipelines can finish at once.
type ManifestEditor struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewManifestEditor binds an editor to the manifest inside the given
// workspace root.
func NewManifestEditor(workspaceRoot string) *ManifestEditor {
	return &ManifestEditor{
		path: filepath.Join(workspaceRoot, filepath.FromSlash(ManifestFileName)),
		now:  time.Now,
	}
}

// Path returns the manifest location on disk.
func (m *ManifestEditor) Path() string {
	return m.path
}

// EnsureMounted registers the entry's route if absent, or refreshes the
// existing entry when the incoming generator version is semver-newer. It
// reports whether the manifest changed.
func (m *ManifestEditor) EnsureMounted(entry ManifestEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	manifest, err := m.load()
	if err != nil {
		return false, err
	}

	entry.RoutePath = NormalizeRoutePath(entry.RoutePath)
	if entry.RoutePath == "" {
		return false, fmt.Errorf("route path is empty")
	}

	for i := range manifest.Entries {
		if manifest.Entries[i].RoutePath != entry.RoutePath {
			continue
		}
		newer, err := IsNewerVersion(manifest.Entries[i].GeneratorVersion, entry.GeneratorVersion)
		if err != nil {
			// An unparsable recorded version is replaced rather than
			// trusted.
			newer = true
		}
		if !newer {
			return false, nil
		}
		entry.RegisteredAt = m.now()
		manifest.Entries[i] = entry
		return true, m.save(manifest)
	}

	entry.RegisteredAt = m.now()
	manifest.Entries = append(manifest.Entries, entry)
	sort.Slice(manifest.Entries, func(i, j int) bool {
		return manifest.Entries[i].RoutePath < manifest.Entries[j].RoutePath
	})
	return true, m.save(manifest)
}

// Lookup returns the entry mounted at the given route path, if any.
func (m *ManifestEditor) Lookup(routePath string) (ManifestEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	manifest, err := m.load()
	if err != nil {
		return ManifestEntry{}, false, err
	}

	routePath = NormalizeRoutePath(routePath)
	for _, entry := range manifest.Entries {
		if entry.RoutePath == routePath {
			return entry, true, nil
		}
	}
	return ManifestEntry{}, false, nil
}

// Entries returns every mounted route, sorted by route path.
func (m *ManifestEditor) Entries() ([]ManifestEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	manifest, err := m.load()
	if err != nil {
		return nil, err
	}
	return manifest.Entries, nil
}

// load reads the manifest from disk. A missing file is an empty manifest,
// not an error.
func (m *ManifestEditor) load() (*routeManifest, error) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return &routeManifest{Version: 1, Entries: []ManifestEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read route manifest: %w", err)
	}

	var manifest routeManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid route manifest: %w", err)
	}
	if manifest.Entries == nil {
		manifest.Entries = []ManifestEntry{}
	}
	return &manifest, nil
}

// save writes the manifest atomically via a temp file and rename, so a
// concurrent reader never sees a partial table.
func (m *ManifestEditor) save(manifest *routeManifest) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	content, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode route manifest: %w", err)
	}
	content = append(content, '\n')

	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write route manifest: %w", err)
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		return fmt.Errorf("failed to replace route manifest: %w", err)
	}
	return nil
}

// NormalizeRoutePath lowers the path and strips surrounding slashes and
// whitespace, so "/Ef-Detailed-G/" and "ef-detailed-g" identify the same
// mount.
func NormalizeRoutePath(routePath string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(routePath), "/"))
}
