package store

import (
	"database/sql"
	"errors"

	"github.com/verdantops/ecodesk/internal/models"
)

// ListFlags returns every feature flag, ordered by name.
func (s *Store) ListFlags() ([]*models.FeatureFlag, error) {
	rows, err := s.db.Query("SELECT name, enabled, description, updated_at FROM feature_flags ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []*models.FeatureFlag
	for rows.Next() {
		var flag models.FeatureFlag
		if err := rows.Scan(&flag.Name, &flag.Enabled, &flag.Description, &flag.UpdatedAt); err != nil {
			return nil, err
		}
		flags = append(flags, &flag)
	}
	return flags, nil
}

// GetFlag retrieves a single feature flag. Returns (nil, nil) when the flag
// does not exist; an unset flag is treated as disabled by callers.
func (s *Store) GetFlag(name string) (*models.FeatureFlag, error) {
	var flag models.FeatureFlag
	query := "SELECT name, enabled, description, updated_at FROM feature_flags WHERE name = ?"
	err := s.db.QueryRow(query, name).Scan(&flag.Name, &flag.Enabled, &flag.Description, &flag.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &flag, nil
}

// UpsertFlag creates or updates a feature flag.
func (s *Store) UpsertFlag(name string, enabled bool, description string) error {
	query := `
		INSERT INTO feature_flags (name, enabled, description, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			enabled = excluded.enabled,
			description = excluded.description,
			updated_at = CURRENT_TIMESTAMP;
	`
	_, err := s.db.Exec(query, name, enabled, description)
	return err
}
