package core

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/verdantops/ecodesk/internal/config"
	"github.com/verdantops/ecodesk/internal/db"
	"github.com/verdantops/ecodesk/internal/jobs"
	"github.com/verdantops/ecodesk/internal/websocket"
)

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	WsHub    *websocket.Hub
	Registry *jobs.Registry
	Version  string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, running migrations,
// and provisioning the in-memory job registry.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database); err != nil {
		// We can't proceed without a valid database schema.
		// Close the DB connection before failing.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	retention := time.Duration(cfg.Jobs.RetentionHours) * time.Hour

	log.Println("Core application setup complete.")
	return &App{
		Config:   cfg,
		DB:       database,
		WsHub:    websocket.NewHub(),
		Registry: jobs.NewRegistry(retention),
		Version:  cfg.Generator.Version,
	}, nil
}

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
