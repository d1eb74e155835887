// Shared test server setup utilities, which simplify all API tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/verdantops/ecodesk/internal/airtable"
	"github.com/verdantops/ecodesk/internal/api"
	"github.com/verdantops/ecodesk/internal/config"
	"github.com/verdantops/ecodesk/internal/core"
	"github.com/verdantops/ecodesk/internal/generator"
	"github.com/verdantops/ecodesk/internal/jobs"
	"github.com/verdantops/ecodesk/internal/websocket"
)

// TestConfig returns a config pointed at throwaway locations: a workspace
// under t.TempDir() and the fake Airtable credentials.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.Workspace.Root = t.TempDir()
	cfg.Airtable.Token = FakeAirtableToken
	cfg.Jobs.RetentionHours = 24
	cfg.Generator.Version = "1.0.0"
	return cfg
}

// SetupTestApp builds a core.App over an in-memory database, a running
// websocket hub, and a fresh job registry.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()

	database := SetupTestDB(t)
	hub := websocket.NewHub()
	go hub.Run()

	return &core.App{
		Config:   TestConfig(t),
		DB:       database,
		WsHub:    hub,
		Registry: jobs.NewRegistry(jobs.DefaultRetention),
		Version:  "test",
	}
}

// SetupTestServer initializes a full core.App and api.Server for
// integration testing, wired to a fake Airtable upstream.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()

	app := SetupTestApp(t)

	upstream := FakeAirtable(t)
	app.Config.Airtable.BaseURL = upstream.URL

	client := airtable.New(upstream.URL, FakeAirtableToken)
	gen, err := generator.NewGenerator(app.Config.Workspace.Root, app.Config.Generator.Version)
	if err != nil {
		t.Fatalf("Failed to build artifact generator: %v", err)
	}
	editor := generator.NewManifestEditor(app.Config.Workspace.Root)
	svc := generator.NewService(app, client, gen, editor)

	server := api.NewServer(app, svc, client)
	return server, app.DB
}
