package generator

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// parseVersion parses a semantic version, tolerating a leading "v".
func parseVersion(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimPrefix(s, "v"))
	if err != nil {
		return nil, fmt.Errorf("invalid version %s: %w", s, err)
	}
	return v, nil
}

// IsNewerVersion reports whether candidate is semantically newer than
// current. The manifest uses this to decide whether a pipeline re-run
// should refresh an existing route entry.
func IsNewerVersion(current, candidate string) (bool, error) {
	cur, err := parseVersion(current)
	if err != nil {
		return false, err
	}
	cand, err := parseVersion(candidate)
	if err != nil {
		return false, err
	}
	return cand.GreaterThan(cur), nil
}

// IsValidVersion reports whether a version string parses as semver.
func IsValidVersion(version string) bool {
	_, err := parseVersion(version)
	return err == nil
}
