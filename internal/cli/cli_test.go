package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	cfg, exit, err := Parse([]string{"build.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "build.hcl", cfg.ManifestPath)
	assert.Equal(t, "packforge.lock", cfg.LockPath)
	assert.Equal(t, "result", cfg.OutDir)
	assert.Empty(t, cfg.Systems)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.WorkerCount)
}

func TestParse_ManifestFlagWinsOverPositional(t *testing.T) {
	t.Parallel()

	cfg, _, err := Parse([]string{"-manifest", "a.hcl", "b.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "a.hcl", cfg.ManifestPath)

	cfg, _, err = Parse([]string{"-m", "short.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "short.hcl", cfg.ManifestPath)
}

func TestParse_SystemsListSplitsAndTrims(t *testing.T) {
	t.Parallel()

	cfg, _, err := Parse([]string{"-systems", "x86_64-linux, aarch64-darwin,", "b.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x86_64-linux", "aarch64-darwin"}, cfg.Systems)
}

func TestParse_InvalidEnums(t *testing.T) {
	t.Parallel()

	_, _, err := Parse([]string{"-log-format", "yaml", "b.hcl"}, &bytes.Buffer{})
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)

	_, _, err = Parse([]string{"-log-level", "loud", "b.hcl"}, &bytes.Buffer{})
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParse_NoArgsAsksForExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, exit, err := Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}
