package devshell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/packforge/internal/devshell"
	"github.com/packforge/packforge/internal/manifest"
	"github.com/packforge/packforge/internal/pkgset"
	"github.com/packforge/packforge/internal/platform"
)

func TestAssemble(t *testing.T) {
	t.Parallel()

	target := platform.Platform{Arch: platform.ArchX86_64, OS: platform.OSLinux}
	m := &manifest.Model{
		Project:   manifest.Project{Name: "jj"},
		Toolchain: manifest.Toolchain{Channel: "1.76.0"},
		DevShell:  manifest.DevShell{Tools: []string{"pkg-config", "rust-analyzer"}},
		Env:       map[string]string{"CARGO_NET_OFFLINE": "true"},
	}
	set := pkgset.Compose(
		pkgset.DefaultBase(target),
		pkgset.ToolchainOverlay(m.Toolchain.Channel, target),
	)

	shell := devshell.Assemble(m, target, set)

	assert.Equal(t, "jj-devshell", shell.Name)
	assert.Equal(t, "x86_64-linux", shell.Platform)
	assert.Equal(t, map[string]string{"CARGO_NET_OFFLINE": "true"}, shell.Env)

	require.Len(t, shell.Packages, 4)
	assert.Equal(t, pkgset.CompilerPackage, shell.Packages[0].Name)
	assert.Equal(t, "1.76.0", shell.Packages[0].Version, "shell uses the pinned toolchain")
	assert.Equal(t, pkgset.BuildToolPackage, shell.Packages[1].Name)
	assert.Equal(t, "pkg-config", shell.Packages[2].Name)

	// A tool the package set does not know is carried unpinned instead of
	// failing the shell.
	assert.Equal(t, "rust-analyzer", shell.Packages[3].Name)
	assert.Equal(t, "stable", shell.Packages[3].Version)
}
