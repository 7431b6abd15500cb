// Package descriptor assembles the hermetic build task for one platform. A
// BuildDescriptor is a pure function of its inputs: the filtered source
// tree, the platform-specialized package set, the verified lock file, the
// feature flags, and the dependency lists. Identical inputs always assemble
// to deeply-equal descriptors, which is what makes builds memoizable and
// reproducible.
package descriptor

import (
	"fmt"
	"strings"

	"github.com/packforge/packforge/internal/builderr"
	"github.com/packforge/packforge/internal/lockfile"
	"github.com/packforge/packforge/internal/manifest"
	"github.com/packforge/packforge/internal/pkgset"
	"github.com/packforge/packforge/internal/platform"
)

// Required environment bindings attached to every descriptor. The two
// pkg-config toggles force linking against system-provided libraries, and
// disabling incremental compilation keeps rebuilds byte-identical.
const (
	EnvZstdPkgConfig    = "ZSTD_SYS_USE_PKG_CONFIG"
	EnvLibssh2PkgConfig = "LIBSSH2_SYS_USE_PKG_CONFIG"
	EnvNoIncremental    = "CARGO_INCREMENTAL"

	// EnvVerboseDiagnostics is set by the pre-check hook only, so test
	// failures are logged with maximal context. It never alters build
	// output.
	EnvVerboseDiagnostics = "RUST_BACKTRACE"
)

// Source is the filtered view of the source tree the build sees.
type Source struct {
	Root    string
	Exclude []string
}

// Hook is a named lifecycle hook. Env bindings apply only for the phase the
// hook wraps.
type Hook struct {
	Name string
	Env  map[string]string
}

// BuildDescriptor is the complete, hermetic specification of one platform's
// build task, handed to the build executor.
type BuildDescriptor struct {
	Name     string
	Alias    string
	Version  string
	Platform string

	Source    Source
	Toolchain manifest.Toolchain

	// BuildDeps and LinkDeps are resolved against the platform-specialized
	// package set, in declared order. For Darwin-like platforms the
	// darwin-only extras are appended to BuildDeps, order preserved.
	BuildDeps []pkgset.Package
	LinkDeps  []pkgset.Package

	Features []string
	Env      map[string]string

	PreCheck Hook

	// Phase command lines executed by the executor inside the sandbox, in
	// order: build, then check.
	BuildCommand []string
	CheckCommand []string

	// BuildOutput is the compiled binary's location relative to the staged
	// source tree; BinaryPath is where the executor installs it relative to
	// the output root.
	BuildOutput string
	BinaryPath  string
}

// Inputs carries everything descriptor assembly depends on. SourceRev is the
// build-identity marker recorded in the environment; an empty value marks a
// dirty working copy.
type Inputs struct {
	Model     *manifest.Model
	Platform  platform.Platform
	Set       pkgset.Set
	Lock      *lockfile.File
	SourceRev string
}

// Assemble produces the build descriptor for one platform. It fails before
// anything else runs when the lock file disagrees with the live dependency
// declarations, and before compilation when a required dependency is absent
// from the package set.
func Assemble(in Inputs) (*BuildDescriptor, error) {
	m := in.Model

	if err := in.Lock.Verify(m.Locked); err != nil {
		return nil, err
	}

	buildNames := append([]string{}, m.Packages.Build...)
	if in.Platform.OS.Kind() == platform.DarwinLike {
		buildNames = append(buildNames, m.Packages.Darwin...)
	}

	buildDeps, err := resolve(in.Set, in.Platform, buildNames)
	if err != nil {
		return nil, err
	}
	linkDeps, err := resolve(in.Set, in.Platform, m.Packages.Link)
	if err != nil {
		return nil, err
	}
	// The pinned toolchain itself is a hard requirement of every build.
	if _, err := resolve(in.Set, in.Platform,
		[]string{pkgset.CompilerPackage, pkgset.BuildToolPackage}); err != nil {
		return nil, err
	}

	env := make(map[string]string, len(m.Env)+4)
	for k, v := range m.Env {
		env[k] = v
	}
	env[EnvZstdPkgConfig] = "true"
	env[EnvLibssh2PkgConfig] = "true"
	env[EnvNoIncremental] = "0"
	env[identityMarker(m.Project.Name)] = in.SourceRev

	features := append([]string{}, m.Features...)

	build := []string{"cargo", "build", "--release", "--locked"}
	check := []string{"cargo", "test", "--release", "--locked"}
	if len(features) > 0 {
		flag := "--features=" + strings.Join(features, ",")
		build = append(build, flag)
		check = append(check, flag)
	}

	return &BuildDescriptor{
		Name:     m.Project.Name,
		Alias:    m.Project.Alias,
		Version:  m.Project.Version,
		Platform: in.Platform.String(),
		Source: Source{
			Root:    m.Project.SourceRoot,
			Exclude: append([]string{}, m.Project.Exclude...),
		},
		Toolchain: m.Toolchain,
		BuildDeps: buildDeps,
		LinkDeps:  linkDeps,
		Features:  features,
		Env:       env,
		PreCheck: Hook{
			Name: "pre-check",
			Env:  map[string]string{EnvVerboseDiagnostics: "1"},
		},
		BuildCommand: build,
		CheckCommand: check,
		BuildOutput:  "target/release/" + m.Project.Name,
		BinaryPath:   "bin/" + m.Project.Name,
	}, nil
}

// resolve looks every name up in the specialized set, preserving list order.
func resolve(set pkgset.Set, target platform.Platform, names []string) ([]pkgset.Package, error) {
	out := make([]pkgset.Package, 0, len(names))
	for _, name := range names {
		pkg, ok := set.Lookup(name)
		if !ok {
			return nil, &builderr.MissingDependencyError{
				Dependency: name,
				Platform:   target.String(),
			}
		}
		out = append(out, pkg)
	}
	return out, nil
}

// identityMarker derives the env key carrying the source revision, e.g.
// project "jj" records its revision under JJ_GIT_HASH.
func identityMarker(name string) string {
	upper := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return fmt.Sprintf("%s_GIT_HASH", upper)
}
