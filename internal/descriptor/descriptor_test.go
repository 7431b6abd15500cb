package descriptor_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/packforge/internal/builderr"
	"github.com/packforge/packforge/internal/descriptor"
	"github.com/packforge/packforge/internal/lockfile"
	"github.com/packforge/packforge/internal/manifest"
	"github.com/packforge/packforge/internal/pkgset"
	"github.com/packforge/packforge/internal/platform"
	"github.com/packforge/packforge/internal/testutil"
)

var (
	linux  = platform.Platform{Arch: platform.ArchX86_64, OS: platform.OSLinux}
	darwin = platform.Platform{Arch: platform.ArchAarch64, OS: platform.OSDarwin}
)

func testModel() *manifest.Model {
	return &manifest.Model{
		Project: manifest.Project{
			Name:       "jj",
			Alias:      "default",
			Version:    "0.12.0",
			SourceRoot: "/repo",
			Exclude:    []string{`.*\.nix$`, `^.jj/`, `^flake\.lock$`, `^target/`},
		},
		Toolchain: manifest.Toolchain{Channel: "1.76.0"},
		Packages: manifest.Packages{
			Build:  []string{"pkg-config", "openssl", "zstd", "libssh2"},
			Link:   []string{"zstd", "libssh2"},
			Darwin: []string{"Security", "libiconv"},
		},
		Locked: []lockfile.Declaration{
			{Name: "anyhow", Version: "1.0.86"},
		},
		Features: []string{"packaging"},
		Env:      map[string]string{"CARGO_NET_OFFLINE": "true"},
	}
}

func testLock(t *testing.T, decls ...lockfile.Declaration) *lockfile.File {
	t.Helper()
	f, err := lockfile.Parse([]byte(testutil.LockFor(decls...)))
	require.NoError(t, err)
	return f
}

func inputsFor(t *testing.T, target platform.Platform) descriptor.Inputs {
	t.Helper()
	m := testModel()
	return descriptor.Inputs{
		Model:    m,
		Platform: target,
		Set: pkgset.Compose(
			pkgset.DefaultBase(target),
			pkgset.ToolchainOverlay(m.Toolchain.Channel, target),
		),
		Lock:      testLock(t, m.Locked...),
		SourceRev: "abc123",
	}
}

func depNames(deps []pkgset.Package) []string {
	names := make([]string, 0, len(deps))
	for _, d := range deps {
		names = append(names, d.Name)
	}
	return names
}

func TestAssemble_LinuxDependencyListEqualsBase(t *testing.T) {
	t.Parallel()

	desc, err := descriptor.Assemble(inputsFor(t, linux))
	require.NoError(t, err)

	assert.Equal(t, []string{"pkg-config", "openssl", "zstd", "libssh2"}, depNames(desc.BuildDeps))
	assert.Equal(t, []string{"zstd", "libssh2"}, depNames(desc.LinkDeps))
}

func TestAssemble_DarwinAppendsExtrasInDeclaredOrder(t *testing.T) {
	t.Parallel()

	desc, err := descriptor.Assemble(inputsFor(t, darwin))
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"pkg-config", "openssl", "zstd", "libssh2", "Security", "libiconv"},
		depNames(desc.BuildDeps))
}

func TestAssemble_RequiredEnvironmentBindings(t *testing.T) {
	t.Parallel()

	desc, err := descriptor.Assemble(inputsFor(t, linux))
	require.NoError(t, err)

	assert.Equal(t, "true", desc.Env[descriptor.EnvZstdPkgConfig])
	assert.Equal(t, "true", desc.Env[descriptor.EnvLibssh2PkgConfig])
	assert.Equal(t, "0", desc.Env[descriptor.EnvNoIncremental])
	assert.Equal(t, "abc123", desc.Env["JJ_GIT_HASH"])
	assert.Equal(t, "true", desc.Env["CARGO_NET_OFFLINE"], "manifest env carried verbatim")
}

func TestAssemble_PreCheckHookOnlyRaisesDiagnostics(t *testing.T) {
	t.Parallel()

	desc, err := descriptor.Assemble(inputsFor(t, linux))
	require.NoError(t, err)

	assert.Equal(t, "pre-check", desc.PreCheck.Name)
	assert.Equal(t, map[string]string{descriptor.EnvVerboseDiagnostics: "1"}, desc.PreCheck.Env)
	_, inBuildEnv := desc.Env[descriptor.EnvVerboseDiagnostics]
	assert.False(t, inBuildEnv, "diagnostics toggle must not leak into the build environment")
}

func TestAssemble_FeatureFlagsReachPhaseCommands(t *testing.T) {
	t.Parallel()

	desc, err := descriptor.Assemble(inputsFor(t, linux))
	require.NoError(t, err)

	assert.Contains(t, desc.BuildCommand, "--features=packaging")
	assert.Contains(t, desc.CheckCommand, "--features=packaging")
	assert.Equal(t, "target/release/jj", desc.BuildOutput)
	assert.Equal(t, "bin/jj", desc.BinaryPath)
}

func TestAssemble_IsPure(t *testing.T) {
	t.Parallel()

	first, err := descriptor.Assemble(inputsFor(t, darwin))
	require.NoError(t, err)
	second, err := descriptor.Assemble(inputsFor(t, darwin))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("identical inputs assembled different descriptors (-first +second):\n%s", diff)
	}
}

func TestAssemble_LockDisagreementAbortsFirst(t *testing.T) {
	t.Parallel()

	in := inputsFor(t, linux)
	in.Lock = testLock(t, lockfile.Declaration{Name: "anyhow", Version: "9.9.9"})
	// Also break the package set: the integrity check must win because it
	// runs before any dependency resolution.
	in.Set = pkgset.Set{}

	_, err := descriptor.Assemble(in)
	var integrity *builderr.IntegrityError
	require.ErrorAs(t, err, &integrity)
}

func TestAssemble_MissingDependencyAbortsBeforeCompilation(t *testing.T) {
	t.Parallel()

	in := inputsFor(t, linux)
	delete(in.Set, "openssl")

	_, err := descriptor.Assemble(in)
	var missing *builderr.MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "openssl", missing.Dependency)
	assert.Equal(t, "x86_64-linux", missing.Platform)
}

func TestAssemble_PlatformConditionalListsAreStable(t *testing.T) {
	t.Parallel()

	// Same platform in, same dependency list out, on every evaluation.
	var last []string
	for i := 0; i < 5; i++ {
		desc, err := descriptor.Assemble(inputsFor(t, darwin))
		require.NoError(t, err)
		names := depNames(desc.BuildDeps)
		if last != nil {
			assert.Equal(t, last, names)
		}
		last = names
	}
}
