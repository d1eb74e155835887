// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/verdantops/ecodesk/internal/airtable"
	"github.com/verdantops/ecodesk/internal/core"
	"github.com/verdantops/ecodesk/internal/generator"
	"github.com/verdantops/ecodesk/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app      *core.App
	db       *sql.DB
	store    *store.Store
	svc      *generator.Service
	upstream *airtable.Client
}

// NewServer creates a new Server instance.
func NewServer(app *core.App, svc *generator.Service, upstream *airtable.Client) *Server {
	return &Server{
		app:      app,
		db:       app.DB,
		store:    store.New(app.DB),
		svc:      svc,
		upstream: upstream,
	}
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	// Public routes
	r.Post("/api/auth/login", s.handleLogin)
	r.Get("/api/version", s.handleGetVersion)

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Post("/api/auth/logout", s.handleLogout)
		r.Get("/api/auth/me", s.handleGetMe)

		r.Route("/api", func(r chi.Router) {
			// Console chrome
			r.Get("/nav", s.handleListNav)
			r.Get("/flags", s.handleListFlags)
			r.Get("/preferences", s.handleListPreferences)
			r.Get("/preferences/{key}", s.handleGetPreference)
			r.Put("/preferences/{key}", s.handleSetPreference)

			// Generic reference-data proxy. {route} must be mounted in the
			// route manifest or the proxy answers 404.
			r.Route("/refdata/{route}", func(r chi.Router) {
				r.Get("/records", s.handleListRecords)
				r.Post("/records", s.handleCreateRecord)
				r.Patch("/records/{recordID}", s.handleUpdateRecord)
				r.Delete("/records/{recordID}", s.handleDeleteRecord)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.AdminOnlyMiddleware)

				// Schema introspection passthrough
				r.Get("/schema/bases/{baseID}/tables", s.handleListTables)
				r.Get("/schema/bases/{baseID}/tables/{tableID}/fields", s.handleTableFields)

				// Module generator
				r.Post("/generator/jobs", s.handleCreateJob)
				r.Get("/generator/jobs/{jobID}", s.handleGetJob)
				r.Post("/generator/jobs/{jobID}/finalize", s.handleFinalizeJob)
				r.Post("/generator/jobs/{jobID}/cancel", s.handleCancelJob)
				r.Get("/generator/artifacts/{targetName}", s.handleVerifyArtifacts)
				r.Get("/generator/manifest", s.handleGetManifest)

				// Feature Flag Management Routes
				r.Put("/flags/{name}", s.handleUpsertFlag)

				// Navigation Management Routes
				r.Post("/nav", s.handleCreateNavItem)
				r.Delete("/nav/{navID}", s.handleDeleteNavItem)

				// User Management Routes
				r.Get("/users", s.handleAdminListUsers)
				r.Post("/users", s.handleAdminCreateUser)
				r.Put("/users/{userID}", s.handleAdminUpdateUser)
				r.Delete("/users/{userID}", s.handleAdminDeleteUser)
			})
		})

		// WebSocket route; job progress is admin-only data.
		r.Group(func(r chi.Router) {
			r.Use(s.AdminOnlyMiddleware)
			r.Get("/ws/admin/progress", func(w http.ResponseWriter, r *http.Request) {
				s.app.WsHub.ServeWs(w, r)
			})
		})
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version})
}
