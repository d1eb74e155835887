package airtable

import (
	"errors"
	"fmt"
)

// Sentinel errors callers check with errors.Is to tell credential problems
// apart from missing targets.
var (
	// ErrUnauthorized means the upstream rejected our token or its scope.
	ErrUnauthorized = errors.New("airtable: authorization denied")

	// ErrNotFound means the upstream returned 404 for the requested path.
	ErrNotFound = errors.New("airtable: not found")

	// ErrTableNotFound means the base exists but lists no table with the
	// requested id.
	ErrTableNotFound = errors.New("airtable: table not found in base")
)

// APIError carries an upstream failure that is none of the sentinel cases.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("airtable: upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("airtable: upstream returned status %d: %s", e.StatusCode, e.Message)
}
