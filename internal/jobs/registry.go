package jobs

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verdantops/ecodesk/internal/models"
)

// ErrJobNotFound is returned when a job id is unknown to the registry. A
// registry miss must stay distinguishable from a job that legitimately
// failed, so this is never folded into a failed status.
var ErrJobNotFound = errors.New("job not found")

// DefaultRetention is how long terminal jobs stay visible to pollers before
// eviction.
const DefaultRetention = 24 * time.Hour

// JobUpdate carries a partial mutation of a job record. Nil fields are left
// untouched.
type JobUpdate struct {
	Status      *models.JobStatus
	Progress    *int
	CurrentStep *string
	Error       *string
	Result      *models.GenerationResult
}

// Registry owns every generation job record in this process. Jobs are
// deliberately not persisted: a lost record is an expected condition that
// the polling protocol reconciles through artifact verification.
type Registry struct {
	mu        sync.RWMutex
	jobs      map[string]*models.GenerationJob
	retention time.Duration

	// now is swappable so eviction tests can move the clock.
	now func() time.Time
}

// NewRegistry creates an empty registry with the given retention window for
// terminal jobs. A non-positive retention falls back to DefaultRetention.
func NewRegistry(retention time.Duration) *Registry {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Registry{
		jobs:      make(map[string]*models.GenerationJob),
		retention: retention,
		now:       time.Now,
	}
}

// Create allocates a fresh pending job for the given target and returns a
// snapshot of it. Stale terminal jobs are evicted on the same call; eviction
// never runs on a timer.
func (r *Registry) Create(spec models.TargetSpec) *models.GenerationJob {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictStaleLocked()

	now := r.now()
	job := &models.GenerationJob{
		ID:        uuid.NewString(),
		Spec:      spec,
		Status:    models.StatusPending,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.jobs[job.ID] = job
	return snapshot(job)
}

// Get returns a copy of the job so callers never alias registry-owned
// memory. The bool reports whether the job exists at all.
func (r *Registry) Get(id string) (*models.GenerationJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, false
	}
	return snapshot(job), true
}

// Update merges the non-nil fields of the update into the stored job and
// refreshes its updated_at timestamp. Progress can never move backwards;
// pollers are promised a non-decreasing sequence up to the terminal state.
func (r *Registry) Update(id string, update JobUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, ErrJobNotFound)
	}

	if update.Status != nil {
		job.Status = *update.Status
	}
	if update.Progress != nil && *update.Progress > job.Progress {
		job.Progress = *update.Progress
	}
	if update.CurrentStep != nil {
		job.CurrentStep = *update.CurrentStep
	}
	if update.Error != nil {
		job.Error = *update.Error
	}
	if update.Result != nil {
		job.Result = update.Result
	}
	job.UpdatedAt = r.now()
	return nil
}

// List returns snapshots of every job, newest first.
func (r *Registry) List() []*models.GenerationJob {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.GenerationJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, snapshot(job))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// EvictStale removes every terminal job whose last update is older than the
// retention window and reports how many were removed.
func (r *Registry) EvictStale() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictStaleLocked()
}

func (r *Registry) evictStaleLocked() int {
	cutoff := r.now().Add(-r.retention)
	evicted := 0
	for id, job := range r.jobs {
		if job.Status.Terminal() && job.UpdatedAt.Before(cutoff) {
			delete(r.jobs, id)
			evicted++
		}
	}
	return evicted
}

// snapshot deep-copies a job. The result's map is copied too, so a poller
// can never observe a partially built FilesCreated.
func snapshot(job *models.GenerationJob) *models.GenerationJob {
	copied := *job
	if job.Result != nil {
		result := *job.Result
		if job.Result.FilesCreated != nil {
			result.FilesCreated = make(map[models.ArtifactKind]bool, len(job.Result.FilesCreated))
			for kind, created := range job.Result.FilesCreated {
				result.FilesCreated[kind] = created
			}
		}
		copied.Result = &result
	}
	return &copied
}
