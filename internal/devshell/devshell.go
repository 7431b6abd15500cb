// Package devshell assembles the interactive development-shell descriptor
// exposed as a sibling of the package outputs. It reuses the platform's
// composed package set but is otherwise independent of the build pipeline.
package devshell

import (
	"github.com/packforge/packforge/internal/manifest"
	"github.com/packforge/packforge/internal/pkgset"
	"github.com/packforge/packforge/internal/platform"
)

// Descriptor describes one platform's interactive toolchain shell.
type Descriptor struct {
	Name     string
	Platform string
	// Packages is the shell's tool list: the pinned toolchain followed by
	// the manifest's devshell tools, in declared order.
	Packages []pkgset.Package
	Env      map[string]string
}

// Assemble builds the shell descriptor from the composed package set. Tools
// missing from the set are carried as unpinned entries rather than failing
// the shell; the shell is a convenience, not a build input.
func Assemble(m *manifest.Model, target platform.Platform, set pkgset.Set) *Descriptor {
	names := append(
		[]string{pkgset.CompilerPackage, pkgset.BuildToolPackage},
		m.DevShell.Tools...,
	)

	pkgs := make([]pkgset.Package, 0, len(names))
	for _, name := range names {
		if pkg, ok := set.Lookup(name); ok {
			pkgs = append(pkgs, pkg)
			continue
		}
		pkgs = append(pkgs, pkgset.Package{Name: name, Version: "stable", Platform: target})
	}

	env := make(map[string]string, len(m.Env))
	for k, v := range m.Env {
		env[k] = v
	}

	return &Descriptor{
		Name:     m.Project.Name + "-devshell",
		Platform: target.String(),
		Packages: pkgs,
		Env:      env,
	}
}
