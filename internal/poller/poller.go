// Package poller implements the client-side polling contract for
// generation jobs: poll the job record on a fixed interval within a bounded
// budget, and fall back to artifact verification when the record goes
// missing. Job-record loss is an expected condition of the in-memory
// registry, so the fallback is a first-class path, not an afterthought.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/verdantops/ecodesk/internal/jobs"
	"github.com/verdantops/ecodesk/internal/models"
)

// Polling defaults. Attempts and wall clock are independent budgets;
// whichever runs out first stops the poll.
const (
	DefaultInterval      = time.Second
	DefaultMaxAttempts   = 300
	DefaultMaxWait       = 5 * time.Minute
	DefaultNotFoundLimit = 3
)

// ErrPollBudgetExceeded means polling stopped without reaching a decision.
// The job may still be running; the outcome is unknown, not failed.
var ErrPollBudgetExceeded = errors.New("poll budget exceeded; job outcome unknown")

// ErrOutcomeUnknown means the verification fallback itself failed, so not
// even the artifacts can say what happened.
var ErrOutcomeUnknown = errors.New("creation status unknown: manual verification required")

// JobFetcher fetches a job record by id. A registry miss must surface as
// jobs.ErrJobNotFound so the poller can count it.
type JobFetcher interface {
	FetchJob(ctx context.Context, jobID string) (*models.GenerationJob, error)
}

// ArtifactVerifier checks artifact existence for a target name,
// independently of any job record.
type ArtifactVerifier interface {
	VerifyArtifacts(ctx context.Context, targetName string) (map[models.ArtifactKind]bool, bool, error)
}

// Options tune the polling budget. Zero values fall back to the defaults.
type Options struct {
	Interval      time.Duration
	MaxAttempts   int
	MaxWait       time.Duration
	NotFoundLimit int
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.MaxWait <= 0 {
		o.MaxWait = DefaultMaxWait
	}
	if o.NotFoundLimit <= 0 {
		o.NotFoundLimit = DefaultNotFoundLimit
	}
	return o
}

// Decision is what polling resolved to: the job record itself, or the
// artifact verification outcome when the record disappeared.
type Decision struct {
	// Job is set when the job record itself reached a decision point. It is
	// nil when the outcome came from artifact verification.
	Job *models.GenerationJob

	FilesCreated map[models.ArtifactKind]bool
	AllCreated   bool

	// Verified is true when the decision came from the artifact fallback
	// rather than the job record.
	Verified bool
}

// Poller polls a job until it parks for confirmation or terminates.
type Poller struct {
	fetcher  JobFetcher
	verifier ArtifactVerifier
	opts     Options
}

// New builds a poller over the given fetcher and verifier.
func New(fetcher JobFetcher, verifier ArtifactVerifier, opts Options) *Poller {
	return &Poller{
		fetcher:  fetcher,
		verifier: verifier,
		opts:     opts.withDefaults(),
	}
}

// WaitForDecision polls the job until it reaches awaiting-confirmation or a
// terminal status. After NotFoundLimit consecutive registry misses the
// poller stops trusting the job record and verifies artifacts for
// targetName instead, treating that as ground truth. Exhausting the budget
// returns ErrPollBudgetExceeded; the caller must treat the outcome as
// unknown rather than failed.
func (p *Poller) WaitForDecision(ctx context.Context, jobID, targetName string) (*Decision, error) {
	deadline := time.Now().Add(p.opts.MaxWait)
	notFound := 0

	for attempt := 0; attempt < p.opts.MaxAttempts; attempt++ {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrPollBudgetExceeded)
		}

		job, err := p.fetcher.FetchJob(ctx, jobID)
		switch {
		case errors.Is(err, jobs.ErrJobNotFound):
			notFound++
			if notFound >= p.opts.NotFoundLimit {
				return p.verifyFallback(ctx, targetName)
			}
		case err != nil:
			// Transient fetch failures neither count as misses nor reset
			// the miss streak; the budget bounds how long we tolerate them.
		default:
			notFound = 0
			if job.Status == models.StatusAwaitingConfirmation || job.Status.Terminal() {
				decision := &Decision{Job: job}
				if job.Result != nil {
					decision.FilesCreated = job.Result.FilesCreated
					decision.AllCreated = allKindsCreated(job.Result.FilesCreated)
				}
				return decision, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.opts.Interval):
		}
	}

	return nil, fmt.Errorf("job %s: %w", jobID, ErrPollBudgetExceeded)
}

func (p *Poller) verifyFallback(ctx context.Context, targetName string) (*Decision, error) {
	files, allCreated, err := p.verifier.VerifyArtifacts(ctx, targetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutcomeUnknown, err)
	}
	return &Decision{
		FilesCreated: files,
		AllCreated:   allCreated,
		Verified:     true,
	}, nil
}

func allKindsCreated(files map[models.ArtifactKind]bool) bool {
	if len(files) == 0 {
		return false
	}
	for _, kind := range models.AllArtifactKinds {
		if !files[kind] {
			return false
		}
	}
	return true
}
