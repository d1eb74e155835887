package api

// Handlers for the console chrome: sidebar navigation, feature flags, and
// per-user preferences.

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListNav(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListNavItems()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve navigation")
		return
	}
	RespondWithJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateNavItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Label     string `json:"label"`
		RoutePath string `json:"route_path"`
		Section   string `json:"section"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Label == "" || payload.RoutePath == "" {
		RespondWithError(w, http.StatusBadRequest, "Label and route path are required")
		return
	}

	item, created, err := s.store.EnsureNavItem(payload.Label, payload.RoutePath, payload.Section)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create navigation entry")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	RespondWithJSON(w, status, item)
}

func (s *Server) handleDeleteNavItem(w http.ResponseWriter, r *http.Request) {
	navID, err := strconv.ParseInt(chi.URLParam(r, "navID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid navigation entry ID")
		return
	}
	if err := s.store.DeleteNavItem(navID); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete navigation entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := s.store.ListFlags()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve feature flags")
		return
	}
	RespondWithJSON(w, http.StatusOK, flags)
}

func (s *Server) handleUpsertFlag(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		RespondWithError(w, http.StatusBadRequest, "Flag name is required")
		return
	}

	var payload struct {
		Enabled     bool   `json:"enabled"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := s.store.UpsertFlag(name, payload.Enabled, payload.Description); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to save feature flag")
		return
	}

	flag, err := s.store.GetFlag(name)
	if err != nil || flag == nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read back feature flag")
		return
	}
	RespondWithJSON(w, http.StatusOK, flag)
}

func (s *Server) handleListPreferences(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	prefs, err := s.store.ListPreferences(user.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve preferences")
		return
	}
	RespondWithJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	pref, err := s.store.GetPreference(user.ID, chi.URLParam(r, "key"))
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve preference")
		return
	}
	if pref == nil {
		RespondWithError(w, http.StatusNotFound, "Preference not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, pref)
}

func (s *Server) handleSetPreference(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(payload.Value) == 0 {
		RespondWithError(w, http.StatusBadRequest, "Preference value is required")
		return
	}

	key := chi.URLParam(r, "key")
	if err := s.store.SetPreference(user.ID, key, string(payload.Value)); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to save preference")
		return
	}

	pref, err := s.store.GetPreference(user.ID, key)
	if err != nil || pref == nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read back preference")
		return
	}
	RespondWithJSON(w, http.StatusOK, pref)
}
