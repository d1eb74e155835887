package api

// Passthrough handlers for schema introspection. The console never caches
// upstream schema; operators always see the live table list.

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/verdantops/ecodesk/internal/airtable"
)

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	baseID := chi.URLParam(r, "baseID")

	tables, err := s.upstream.ListTables(r.Context(), baseID)
	if err != nil {
		s.respondUpstreamError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, tables)
}

func (s *Server) handleTableFields(w http.ResponseWriter, r *http.Request) {
	baseID := chi.URLParam(r, "baseID")
	tableID := chi.URLParam(r, "tableID")

	fields, err := s.upstream.TableFields(r.Context(), baseID, tableID)
	if err != nil {
		s.respondUpstreamError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, fields)
}

// respondUpstreamError translates upstream client failures into console
// responses. Credential problems are the console's fault, not the
// caller's, so they surface as 502 rather than 401.
func (s *Server) respondUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, airtable.ErrUnauthorized):
		RespondWithError(w, http.StatusBadGateway, "Upstream authorization denied")
	case errors.Is(err, airtable.ErrNotFound), errors.Is(err, airtable.ErrTableNotFound):
		RespondWithError(w, http.StatusNotFound, "Upstream resource not found")
	default:
		log.Printf("Upstream request failed: %v", err)
		RespondWithError(w, http.StatusBadGateway, "Upstream request failed")
	}
}
