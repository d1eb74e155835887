package store

import (
	"database/sql"
	"time"

	"github.com/verdantops/ecodesk/internal/models"
)

// ListNavItems returns the sidebar navigation, grouped by section and
// ordered by position within each section.
func (s *Store) ListNavItems() ([]*models.NavItem, error) {
	query := "SELECT id, label, route_path, section, position, created_at FROM nav_items ORDER BY section ASC, position ASC, label ASC"
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.NavItem
	for rows.Next() {
		var item models.NavItem
		if err := rows.Scan(&item.ID, &item.Label, &item.RoutePath, &item.Section, &item.Position, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}

// EnsureNavItem inserts a navigation entry unless one already exists for the
// route path. It returns the entry and whether a new row was inserted, so
// finalizing the same job twice never duplicates the sidebar.
func (s *Store) EnsureNavItem(label, routePath, section string) (*models.NavItem, bool, error) {
	existing, err := s.getNavItemByRoute(routePath)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	var position int
	err = s.db.QueryRow("SELECT COALESCE(MAX(position), 0) + 1 FROM nav_items WHERE section = ?", section).Scan(&position)
	if err != nil {
		return nil, false, err
	}

	res, err := s.db.Exec(
		"INSERT INTO nav_items (label, route_path, section, position, created_at) VALUES (?, ?, ?, ?, ?)",
		label, routePath, section, position, time.Now(),
	)
	if err != nil {
		return nil, false, err
	}
	id, _ := res.LastInsertId()
	return &models.NavItem{
		ID:        id,
		Label:     label,
		RoutePath: routePath,
		Section:   section,
		Position:  position,
	}, true, nil
}

// DeleteNavItem removes a navigation entry.
func (s *Store) DeleteNavItem(id int64) error {
	_, err := s.db.Exec("DELETE FROM nav_items WHERE id = ?", id)
	return err
}

func (s *Store) getNavItemByRoute(routePath string) (*models.NavItem, error) {
	var item models.NavItem
	query := "SELECT id, label, route_path, section, position, created_at FROM nav_items WHERE route_path = ?"
	err := s.db.QueryRow(query, routePath).Scan(&item.ID, &item.Label, &item.RoutePath, &item.Section, &item.Position, &item.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}
