// Supporting console data: per-user preferences, global feature flags, and
// the sidebar navigation entries that finalized generation jobs can extend.

package models

import "time"

// Preference is a per-user key/value setting. Value holds raw JSON so the
// UI can store arbitrary shapes without a schema change.
type Preference struct {
	UserID    int64     `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FeatureFlag is a global console toggle.
type FeatureFlag struct {
	Name        string    `json:"name"`
	Enabled     bool      `json:"enabled"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NavItem is a sidebar navigation entry.
type NavItem struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	RoutePath string    `json:"route_path"`
	Section   string    `json:"section,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
