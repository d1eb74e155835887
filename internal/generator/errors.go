package generator

import (
	"errors"
	"fmt"

	"github.com/verdantops/ecodesk/internal/models"
)

var (
	// ErrTargetNotFound means the requested table could not be resolved in
	// the target base.
	ErrTargetNotFound = errors.New("target table not found")

	// ErrInvalidJobState means finalize or cancel was called on a job that
	// is not awaiting confirmation.
	ErrInvalidJobState = errors.New("job is not awaiting confirmation")
)

// GenerationError records which pipeline step failed and, for artifact
// steps, which artifact kind was being written.
type GenerationError struct {
	Step  string
	Kind  models.ArtifactKind
	Cause error
}

func (e *GenerationError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("step %q: artifact %s: %v", e.Step, e.Kind, e.Cause)
	}
	return fmt.Sprintf("step %q: %v", e.Step, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
