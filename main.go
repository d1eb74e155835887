package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/verdantops/ecodesk/internal/airtable"
	"github.com/verdantops/ecodesk/internal/api"
	"github.com/verdantops/ecodesk/internal/auth"
	"github.com/verdantops/ecodesk/internal/core"
	"github.com/verdantops/ecodesk/internal/generator"
	"github.com/verdantops/ecodesk/internal/jobs"
	"github.com/verdantops/ecodesk/internal/store"
	"github.com/verdantops/ecodesk/internal/util"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New()

	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	// --- First User Provisioning ---
	st := store.New(app.DB)
	userCount, err := st.CountUsers()
	if err != nil {
		log.Fatalf("Could not check user count: %v", err)
	}
	if userCount == 0 {
		log.Println("No users found. Creating default admin account.")
		password := generateRandomPassword(12)
		passwordHash, _ := auth.HashPassword(password)
		_, err := st.CreateUser("admin", passwordHash, "admin")
		if err != nil {
			log.Fatalf("Could not create default admin user: %v", err)
		}
		log.Println("==================================================")
		log.Println("Default admin user created.")
		log.Printf("Username: admin")
		log.Printf("Password: %s", password)
		log.Println("Please change this password immediately.")
		log.Println("==================================================")
	}

	// The generator refuses to start against a workspace it cannot write
	// module files into.
	if err := util.ValidateWorkspaceRoot(app.Config.Workspace.Root); err != nil {
		log.Fatalf("Workspace root %q is unusable: %v", app.Config.Workspace.Root, err)
	}

	// Upstream schema and record client
	if app.Config.Airtable.Token == "" {
		log.Println("Warning: no Airtable token configured; upstream calls will be rejected.")
	}
	upstream := airtable.New(app.Config.Airtable.BaseURL, app.Config.Airtable.Token)

	// Module generation pipeline
	artifacts, err := generator.NewGenerator(app.Config.Workspace.Root, app.Version)
	if err != nil {
		log.Fatalf("Could not load generator templates: %v", err)
	}
	editor := generator.NewManifestEditor(app.Config.Workspace.Root)
	svc := generator.NewService(app, upstream, artifacts, editor)

	// Start the progress broadcast hub
	go app.WsHub.Run()

	// Start periodic maintenance jobs (session purge)
	scheduler := jobs.StartScheduler(st)
	defer scheduler.Stop()

	// Watch the route manifest for out-of-band edits
	watcher := generator.NewManifestWatcher(editor, app.WsHub)
	if err := watcher.Start(); err != nil {
		log.Printf("Warning: manifest watcher failed to start: %v", err)
	} else {
		defer watcher.Stop()
	}

	// Setup the API server
	server := api.NewServer(app, svc, upstream)
	addr := fmt.Sprintf(":%d", app.Config.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}
	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting web server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt a graceful shutdown.
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

func generateRandomPassword(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[seededRand.Intn(len(charset))]
	}
	return string(b)
}
