// Package pkgset models the platform-parameterized package universe a build
// draws its dependencies from. A Set is composed by explicitly folding an
// ordered list of overlays over a base set; there is no ambient or global
// threading of the set between components.
package pkgset

import (
	"sort"

	"github.com/packforge/packforge/internal/platform"
)

// Package is one buildable entry in a Set.
type Package struct {
	Name    string
	Version string
	// Platform records which target the entry was specialized for; it is
	// informational and does not take part in lookups.
	Platform platform.Platform
}

// Set maps package name to its buildable package for one platform.
type Set map[string]Package

// Overlay transforms a Set into an extended Set. Overlays never mutate their
// input; they return a copy with rebindings applied.
type Overlay func(Set) Set

// Base is a constructor producing the unspecialized package set for a
// platform.
type Base func(platform.Platform) Set

// Compose folds the overlay list in declared order over the base set. A
// later overlay's binding for a key always shadows an earlier one. The
// result is a fresh Set; neither base nor any intermediate is mutated.
func Compose(base Set, overlays ...Overlay) Set {
	out := base.clone()
	for _, overlay := range overlays {
		out = overlay(out)
	}
	return out
}

// Extend returns an overlay that rebinds exactly the given packages, leaving
// every other entry of the incoming set untouched.
func Extend(pkgs ...Package) Overlay {
	return func(s Set) Set {
		out := s.clone()
		for _, p := range pkgs {
			out[p.Name] = p
		}
		return out
	}
}

// Lookup returns the package bound to name, if any.
func (s Set) Lookup(name string) (Package, bool) {
	p, ok := s[name]
	return p, ok
}

// Names returns the sorted package names in the set.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s Set) clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
