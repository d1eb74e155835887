package api

// Handlers for the module generator: job submission, polling, the two-phase
// finalize/cancel confirmation, and the artifact verification fallback that
// pollers use when a job record has been evicted.

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/verdantops/ecodesk/internal/generator"
	"github.com/verdantops/ecodesk/internal/jobs"
	"github.com/verdantops/ecodesk/internal/models"
)

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var spec models.TargetSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if spec.BaseID == "" || spec.TableID == "" {
		RespondWithError(w, http.StatusBadRequest, "base_id and table_id are required")
		return
	}

	job := s.svc.StartJob(spec)
	RespondWithJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.app.Registry.Get(chi.URLParam(r, "jobID"))
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Job not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, job)
}

func (s *Server) handleFinalizeJob(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AddNavEntry bool `json:"add_nav_entry"`
	}
	// The body is optional; an absent one means no navigation entry.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	job, err := s.svc.Finalize(chi.URLParam(r, "jobID"), payload.AddNavEntry)
	if err != nil {
		s.respondJobError(w, err, "Failed to finalize job")
		return
	}
	RespondWithJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.svc.Cancel(chi.URLParam(r, "jobID"))
	if err != nil {
		s.respondJobError(w, err, "Failed to cancel job")
		return
	}
	RespondWithJSON(w, http.StatusOK, job)
}

func (s *Server) handleVerifyArtifacts(w http.ResponseWriter, r *http.Request) {
	targetName := chi.URLParam(r, "targetName")
	if targetName == "" {
		RespondWithError(w, http.StatusBadRequest, "Target name is required")
		return
	}

	files, allCreated, err := s.svc.VerifyArtifacts(targetName)
	if err != nil {
		log.Printf("Artifact verification for %q failed: %v", targetName, err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to verify artifacts")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"all_created":   allCreated,
		"files_created": files,
	})
}

func (s *Server) handleGetManifest(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Manifest().Entries()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read route manifest")
		return
	}
	RespondWithJSON(w, http.StatusOK, entries)
}

// respondJobError maps confirmation-protocol failures onto status codes:
// unknown job → 404, job not parked for confirmation → 409, anything else
// → 500 with the fallback message.
func (s *Server) respondJobError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		RespondWithError(w, http.StatusNotFound, "Job not found")
	case errors.Is(err, generator.ErrInvalidJobState):
		RespondWithError(w, http.StatusConflict, "Job is not awaiting confirmation")
	default:
		log.Printf("%s: %v", fallback, err)
		RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
