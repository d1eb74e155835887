// This file defines the data structures for asynchronous table-generation
// jobs: the job record itself, its target specification, and its result.

package models

import "time"

// JobStatus tracks a generation job through its lifecycle.
type JobStatus string

const (
	StatusPending              JobStatus = "pending"
	StatusInProgress           JobStatus = "in-progress"
	StatusAwaitingConfirmation JobStatus = "awaiting-confirmation"
	StatusCompleted            JobStatus = "completed"
	StatusFailed               JobStatus = "failed"
	StatusCancelled            JobStatus = "cancelled"
)

// Terminal reports whether a job in this status will never change again.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ArtifactKind identifies one of the four source artifacts the generator
// writes for a module.
type ArtifactKind string

const (
	ArtifactService  ArtifactKind = "service"  // data-access module
	ArtifactClient   ArtifactKind = "client"   // client-facing API wrapper
	ArtifactRoutes   ArtifactKind = "routes"   // route handlers
	ArtifactUIConfig ArtifactKind = "uiconfig" // UI configuration
)

// AllArtifactKinds lists every artifact kind in generation order.
var AllArtifactKinds = []ArtifactKind{
	ArtifactService,
	ArtifactClient,
	ArtifactRoutes,
	ArtifactUIConfig,
}

// TargetSpec identifies the external table a job generates a module from.
// It is immutable once the job starts.
type TargetSpec struct {
	BaseID    string `json:"base_id"`
	TableID   string `json:"table_id"`
	TableName string `json:"table_name,omitempty"` // resolved via introspection when empty
	Section   string `json:"section,omitempty"`
}

// GenerationResult is attached to a job once the pipeline parks at
// awaiting-confirmation. FilesCreated reflects an on-disk verification, not
// the write calls' return values.
type GenerationResult struct {
	TargetName      string                `json:"target_name"`
	TableName       string                `json:"table_name"` // resolved display name
	RoutePath       string                `json:"route_path"`
	FilesCreated    map[ArtifactKind]bool `json:"files_created"`
	ManifestUpdated bool                  `json:"manifest_updated"`
}

// GenerationJob is the unit of asynchronous work tracked by the registry.
type GenerationJob struct {
	ID          string            `json:"id"`
	Spec        TargetSpec        `json:"spec"`
	Status      JobStatus         `json:"status"`
	Progress    int               `json:"progress"` // 0-100, non-decreasing until terminal
	CurrentStep string            `json:"current_step,omitempty"`
	Error       string            `json:"error,omitempty"` // set only when status is "failed"
	Result      *GenerationResult `json:"result,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
