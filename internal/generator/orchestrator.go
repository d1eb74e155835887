package generator

import (
	"context"
	"fmt"
	"log"

	"github.com/verdantops/ecodesk/internal/core"
	"github.com/verdantops/ecodesk/internal/jobs"
	"github.com/verdantops/ecodesk/internal/models"
	"github.com/verdantops/ecodesk/internal/store"
	"github.com/verdantops/ecodesk/internal/util"
)

// Pipeline step descriptions, surfaced to pollers via the job's currentStep.
const (
	StepResolveTable     = "Resolving table name"
	StepFetchSchema      = "Fetching table schema"
	StepGenerateService  = "Generating service module"
	StepGenerateClient   = "Generating API client"
	StepGenerateRoutes   = "Generating route module"
	StepGenerateUIConfig = "Generating UI config"
	StepRegisterRoute    = "Registering route"
)

// DefaultSection groups generated modules that did not ask for a section.
const DefaultSection = "reference"

// Introspector is the slice of the schema client the pipeline needs.
type Introspector interface {
	ListTables(ctx context.Context, baseID string) ([]models.TableInfo, error)
	TableFields(ctx context.Context, baseID, tableID string) ([]models.FieldInfo, error)
}

// Service drives generation pipelines and owns the two-phase confirmation
// protocol. Each StartJob call detaches one pipeline goroutine, and that
// goroutine is the only writer for its job until it parks or fails.
type Service struct {
	app       *core.App
	st        *store.Store
	schema    Introspector
	artifacts *Generator
	manifest  *ManifestEditor
}

// NewService wires a pipeline service over the shared app, a schema
// introspection client, and the artifact/manifest collaborators.
func NewService(app *core.App, schema Introspector, artifacts *Generator, manifest *ManifestEditor) *Service {
	return &Service{
		app:       app,
		st:        store.New(app.DB),
		schema:    schema,
		artifacts: artifacts,
		manifest:  manifest,
	}
}

// Manifest exposes the route manifest editor so the API layer can serve and
// resolve mounted routes.
func (s *Service) Manifest() *ManifestEditor {
	return s.manifest
}

// StartJob registers a pending job for the target and detaches its pipeline.
// The caller gets the job record back immediately and is expected to poll.
func (s *Service) StartJob(spec models.TargetSpec) *models.GenerationJob {
	if spec.Section == "" {
		spec.Section = DefaultSection
	}
	job := s.app.Registry.Create(spec)
	go s.run(job.ID, spec)
	return job
}

// run executes the pipeline for one job. A panic anywhere in the run is
// written to the job record as a failure, never left as an unobserved
// crash. Artifacts written before a failure stay on disk; rollback only
// happens through an explicit cancel.
func (s *Service) run(jobID string, spec models.TargetSpec) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Generation job %s panicked: %v", jobID, r)
			s.fail(jobID, fmt.Sprintf("generation panicked: %v", r))
		}
	}()

	ctx := context.Background()

	s.step(jobID, StepResolveTable)
	tableName, err := s.resolveTableName(ctx, spec)
	if err != nil {
		s.fail(jobID, (&GenerationError{Step: StepResolveTable, Cause: err}).Error())
		return
	}
	names := DeriveNames(tableName)
	if err := util.ValidateTargetName(names.Pascal); err != nil {
		s.fail(jobID, (&GenerationError{Step: StepResolveTable, Cause: err}).Error())
		return
	}
	s.progress(jobID, 10)

	s.step(jobID, StepFetchSchema)
	fields, err := s.schema.TableFields(ctx, spec.BaseID, spec.TableID)
	if err != nil {
		s.fail(jobID, (&GenerationError{Step: StepFetchSchema, Cause: err}).Error())
		return
	}
	s.progress(jobID, 30)

	artifactSteps := []struct {
		kind     models.ArtifactKind
		name     string
		progress int
	}{
		{models.ArtifactService, StepGenerateService, 50},
		{models.ArtifactClient, StepGenerateClient, 70},
		{models.ArtifactRoutes, StepGenerateRoutes, 85},
		{models.ArtifactUIConfig, StepGenerateUIConfig, 100},
	}
	for _, st := range artifactSteps {
		s.step(jobID, st.name)
		if _, err := s.artifacts.Write(st.kind, names, spec, fields); err != nil {
			s.fail(jobID, (&GenerationError{Step: st.name, Kind: st.kind, Cause: err}).Error())
			return
		}
		s.progress(jobID, st.progress)
	}

	s.step(jobID, StepRegisterRoute)
	changed, err := s.manifest.EnsureMounted(ManifestEntry{
		RoutePath:        names.Kebab,
		TargetName:       names.Pascal,
		TableName:        names.Display,
		BaseID:           spec.BaseID,
		TableID:          spec.TableID,
		Section:          spec.Section,
		GeneratorVersion: s.app.Config.Generator.Version,
	})
	if err != nil {
		s.fail(jobID, (&GenerationError{Step: StepRegisterRoute, Cause: err}).Error())
		return
	}

	// Trust the disk, not the write calls, for what actually exists.
	filesCreated, err := s.artifacts.Verify(names)
	if err != nil {
		s.fail(jobID, fmt.Sprintf("artifact verification failed: %v", err))
		return
	}

	status := models.StatusAwaitingConfirmation
	update := jobs.JobUpdate{
		Status: &status,
		Result: &models.GenerationResult{
			TargetName:      names.Pascal,
			TableName:       names.Display,
			RoutePath:       names.Kebab,
			FilesCreated:    filesCreated,
			ManifestUpdated: changed,
		},
	}
	if err := s.app.Registry.Update(jobID, update); err != nil {
		log.Printf("Failed to park job %s for confirmation: %v", jobID, err)
		return
	}
	s.broadcast(jobID)
}

// resolveTableName returns the table name given in the target spec, or
// resolves it by listing the base's tables and matching on table id.
func (s *Service) resolveTableName(ctx context.Context, spec models.TargetSpec) (string, error) {
	if spec.TableName != "" {
		return spec.TableName, nil
	}
	tables, err := s.schema.ListTables(ctx, spec.BaseID)
	if err != nil {
		return "", err
	}
	for _, table := range tables {
		if table.ID == spec.TableID {
			return table.Name, nil
		}
	}
	return "", fmt.Errorf("table %s in base %s: %w", spec.TableID, spec.BaseID, ErrTargetNotFound)
}

// Finalize completes an awaiting-confirmation job, optionally adding a
// sidebar navigation entry for the new route. Finalizing a job that already
// completed is a no-op so retried confirmations stay safe.
func (s *Service) Finalize(jobID string, addNavEntry bool) (*models.GenerationJob, error) {
	job, ok := s.app.Registry.Get(jobID)
	if !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, jobs.ErrJobNotFound)
	}
	if job.Status == models.StatusCompleted {
		return job, nil
	}
	if job.Status != models.StatusAwaitingConfirmation || job.Result == nil {
		return nil, fmt.Errorf("finalize job %s in status %s: %w", jobID, job.Status, ErrInvalidJobState)
	}

	if addNavEntry {
		if _, _, err := s.st.EnsureNavItem(job.Result.TableName, job.Result.RoutePath, job.Spec.Section); err != nil {
			return nil, fmt.Errorf("failed to add navigation entry: %w", err)
		}
	}

	status := models.StatusCompleted
	if err := s.app.Registry.Update(jobID, jobs.JobUpdate{Status: &status}); err != nil {
		return nil, err
	}
	s.broadcast(jobID)

	job, _ = s.app.Registry.Get(jobID)
	return job, nil
}

// Cancel rolls back an awaiting-confirmation job. Every artifact phase 1
// verified on disk is deleted, with paths recomputed from the recorded
// table name rather than read from cached paths. The route manifest entry
// is deliberately left in place; mounts are only ever added.
func (s *Service) Cancel(jobID string) (*models.GenerationJob, error) {
	job, ok := s.app.Registry.Get(jobID)
	if !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, jobs.ErrJobNotFound)
	}
	if job.Status != models.StatusAwaitingConfirmation || job.Result == nil {
		return nil, fmt.Errorf("cancel job %s in status %s: %w", jobID, job.Status, ErrInvalidJobState)
	}

	names := DeriveNames(job.Result.TableName)
	for _, kind := range models.AllArtifactKinds {
		if !job.Result.FilesCreated[kind] {
			continue
		}
		if err := s.artifacts.Remove(kind, names); err != nil {
			// Leave the job awaiting confirmation so the operator can
			// retry the cancel once the filesystem recovers.
			return nil, fmt.Errorf("rollback failed: %w", err)
		}
	}

	status := models.StatusCancelled
	if err := s.app.Registry.Update(jobID, jobs.JobUpdate{Status: &status}); err != nil {
		return nil, err
	}
	s.broadcast(jobID)

	job, _ = s.app.Registry.Get(jobID)
	return job, nil
}

// VerifyArtifacts checks which artifacts exist on disk for a target name,
// independently of any job record. The manifest is consulted first since it
// records the original table name; a target whose pipeline died before
// registration falls back to deriving paths from the target name itself.
func (s *Service) VerifyArtifacts(targetName string) (map[models.ArtifactKind]bool, bool, error) {
	names := DeriveNames(targetName)

	entries, err := s.manifest.Entries()
	if err != nil {
		return nil, false, err
	}
	for _, entry := range entries {
		if entry.TargetName == names.Pascal {
			names = DeriveNames(entry.TableName)
			break
		}
	}

	files, err := s.artifacts.Verify(names)
	if err != nil {
		return nil, false, err
	}
	return files, AllCreated(files), nil
}

// step marks the job in progress at the named step and notifies listeners.
func (s *Service) step(jobID, name string) {
	status := models.StatusInProgress
	if err := s.app.Registry.Update(jobID, jobs.JobUpdate{Status: &status, CurrentStep: &name}); err != nil {
		log.Printf("Failed to update job %s step: %v", jobID, err)
		return
	}
	s.broadcast(jobID)
}

func (s *Service) progress(jobID string, value int) {
	if err := s.app.Registry.Update(jobID, jobs.JobUpdate{Progress: &value}); err != nil {
		log.Printf("Failed to update job %s progress: %v", jobID, err)
		return
	}
	s.broadcast(jobID)
}

func (s *Service) fail(jobID, message string) {
	status := models.StatusFailed
	if err := s.app.Registry.Update(jobID, jobs.JobUpdate{Status: &status, Error: &message}); err != nil {
		log.Printf("Failed to mark job %s failed: %v", jobID, err)
		return
	}
	s.broadcast(jobID)
}

// broadcast pushes the job's current snapshot to the admin websocket.
func (s *Service) broadcast(jobID string) {
	if s.app.WsHub == nil {
		return
	}
	job, ok := s.app.Registry.Get(jobID)
	if !ok {
		return
	}
	s.app.WsHub.BroadcastJSON(models.ProgressUpdate{
		JobID:    job.ID,
		Status:   string(job.Status),
		Progress: job.Progress,
		Step:     job.CurrentStep,
		Done:     job.Status.Terminal() || job.Status == models.StatusAwaitingConfirmation,
	})
}
