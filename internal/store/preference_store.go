package store

import (
	"database/sql"
	"errors"

	"github.com/verdantops/ecodesk/internal/models"
)

// GetPreference retrieves a single preference for a user. Returns (nil, nil)
// when the key has never been set, so callers can fall back to defaults.
func (s *Store) GetPreference(userID int64, key string) (*models.Preference, error) {
	var pref models.Preference
	query := "SELECT user_id, key, value, updated_at FROM preferences WHERE user_id = ? AND key = ?"
	err := s.db.QueryRow(query, userID, key).Scan(&pref.UserID, &pref.Key, &pref.Value, &pref.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &pref, nil
}

// SetPreference inserts or replaces a preference value for a user.
func (s *Store) SetPreference(userID int64, key, value string) error {
	query := `
		INSERT INTO preferences (user_id, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP;
	`
	_, err := s.db.Exec(query, userID, key, value)
	return err
}

// ListPreferences returns all preferences stored for a user.
func (s *Store) ListPreferences(userID int64) ([]*models.Preference, error) {
	rows, err := s.db.Query("SELECT user_id, key, value, updated_at FROM preferences WHERE user_id = ? ORDER BY key ASC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefs []*models.Preference
	for rows.Next() {
		var pref models.Preference
		if err := rows.Scan(&pref.UserID, &pref.Key, &pref.Value, &pref.UpdatedAt); err != nil {
			return nil, err
		}
		prefs = append(prefs, &pref)
	}
	return prefs, nil
}
