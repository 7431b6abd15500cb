package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A manifest with a syntax error is guaranteed to panic during the
	// loading phase inside app.NewApp().
	invalidHCL := `
		project {
			name = "jj"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "packforge.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"-lock", filepath.Join(tempDir, "packforge.lock"), filePath}
	out := &bytes.Buffer{}

	// --- Act ---
	// run should recover the panic and return it as an error.
	runErr := run(out, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")

	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "application startup panicked"), "The error message should indicate that a panic was recovered.")
	require.True(t, strings.Contains(errStr, "failed to parse"), "The error message should contain the underlying reason for the panic.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	err := run(out, args)

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_NoManifestPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, nil)

	require.NoError(t, err)
	require.Contains(t, out.String(), "MANIFEST_PATH")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	err := run(out, args)

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
