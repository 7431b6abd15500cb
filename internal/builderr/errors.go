// Package builderr defines the error taxonomy shared by descriptor assembly
// and the build executor. Every failure mode that aborts a build maps to one
// of these types so callers can branch on errors.As instead of string
// matching.
package builderr

import "fmt"

// IntegrityError reports a disagreement between the lock file and the live
// dependency declarations. It aborts the build before any build step runs.
type IntegrityError struct {
	Dependency string
	Reason     string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("lock file integrity violation for %q: %s", e.Dependency, e.Reason)
}

// MissingDependencyError reports a required dependency that is absent from
// the platform-specialized package set. It aborts before compilation.
type MissingDependencyError struct {
	Dependency string
	Platform   string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("dependency %q is not present in the package set for %s", e.Dependency, e.Platform)
}

// TestFailure reports a non-zero exit from the automated test run. Packaging
// is aborted; no partial package is published.
type TestFailure struct {
	ExitCode int
	Output   string
}

func (e *TestFailure) Error() string {
	return fmt.Sprintf("test run exited with code %d", e.ExitCode)
}

// ArtifactGenerationError reports a failed or empty post-install artifact
// invocation. The whole build is aborted and nothing is published.
type ArtifactGenerationError struct {
	Artifact string
	Err      error
}

func (e *ArtifactGenerationError) Error() string {
	return fmt.Sprintf("generating artifact %q: %v", e.Artifact, e.Err)
}

// Unwrap exposes the underlying invocation error.
func (e *ArtifactGenerationError) Unwrap() error {
	return e.Err
}
