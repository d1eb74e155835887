package api

// The generic reference-data proxy. Generated modules are all served by the
// same four handlers: the {route} segment is resolved through the route
// manifest to a concrete base and table, and the request is forwarded
// upstream with the console's credentials. Routes that were never mounted
// by a generation job answer 404.

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/verdantops/ecodesk/internal/airtable"
	"github.com/verdantops/ecodesk/internal/generator"
)

// resolveRoute maps the {route} URL segment to its manifest entry. A miss
// writes the 404 itself and reports ok=false.
func (s *Server) resolveRoute(w http.ResponseWriter, r *http.Request) (generator.ManifestEntry, bool) {
	route := chi.URLParam(r, "route")

	entry, found, err := s.svc.Manifest().Lookup(route)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read route manifest")
		return generator.ManifestEntry{}, false
	}
	if !found {
		RespondWithError(w, http.StatusNotFound, "Route not mounted")
		return generator.ManifestEntry{}, false
	}
	return entry, true
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.resolveRoute(w, r)
	if !ok {
		return
	}

	opts := airtable.ListRecordsOptions{
		View:   r.URL.Query().Get("view"),
		Offset: r.URL.Query().Get("offset"),
	}
	if max := r.URL.Query().Get("max_records"); max != "" {
		opts.MaxRecords, _ = strconv.Atoi(max)
	}

	page, err := s.upstream.ListRecords(r.Context(), entry.BaseID, entry.TableID, opts)
	if err != nil {
		s.respondUpstreamError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.resolveRoute(w, r)
	if !ok {
		return
	}

	var payload struct {
		Fields map[string]interface{} `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Fields) == 0 {
		RespondWithError(w, http.StatusBadRequest, "Record fields are required")
		return
	}

	record, err := s.upstream.CreateRecord(r.Context(), entry.BaseID, entry.TableID, payload.Fields)
	if err != nil {
		s.respondUpstreamError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, record)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.resolveRoute(w, r)
	if !ok {
		return
	}

	var payload struct {
		Fields map[string]interface{} `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Fields) == 0 {
		RespondWithError(w, http.StatusBadRequest, "Record fields are required")
		return
	}

	recordID := chi.URLParam(r, "recordID")
	record, err := s.upstream.UpdateRecord(r.Context(), entry.BaseID, entry.TableID, recordID, payload.Fields)
	if err != nil {
		s.respondUpstreamError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.resolveRoute(w, r)
	if !ok {
		return
	}

	recordID := chi.URLParam(r, "recordID")
	if err := s.upstream.DeleteRecord(r.Context(), entry.BaseID, entry.TableID, recordID); err != nil {
		s.respondUpstreamError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
