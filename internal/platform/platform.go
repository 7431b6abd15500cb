// Package platform models the fixed set of build targets. A Platform pairs a
// CPU architecture with an operating-system kind, and a Matrix drives
// per-platform composition by invoking a builder once for every target.
package platform

import (
	"fmt"
	"sort"
	"strings"
)

// Arch is a CPU architecture identifier.
type Arch string

// OS is an operating-system identifier.
type OS string

// Supported architecture and OS values. The default matrix is the cross
// product of these, but a Matrix may carry any explicit platform list.
const (
	ArchX86_64  Arch = "x86_64"
	ArchAarch64 Arch = "aarch64"

	OSLinux  OS = "linux"
	OSDarwin OS = "darwin"
)

// Kind is the tagged variant used for platform-conditional dependency
// selection. Branching on Kind keeps OS-specific behavior in one place
// instead of ad hoc booleans scattered through construction logic.
type Kind int

const (
	LinuxLike Kind = iota
	DarwinLike
)

// Kind returns the dependency-selection variant for the OS.
func (o OS) Kind() Kind {
	if o == OSDarwin {
		return DarwinLike
	}
	return LinuxLike
}

// Platform identifies one build target. It is an immutable value type; two
// platforms are equal iff their fields are equal.
type Platform struct {
	Arch Arch
	OS   OS
}

// String renders the canonical identifier, e.g. "x86_64-linux".
func (p Platform) String() string {
	return string(p.Arch) + "-" + string(p.OS)
}

// Parse converts a canonical identifier back into a Platform.
func Parse(s string) (Platform, error) {
	arch, os, ok := strings.Cut(s, "-")
	if !ok {
		return Platform{}, fmt.Errorf("invalid platform identifier %q: want <arch>-<os>", s)
	}
	p := Platform{Arch: Arch(arch), OS: OS(os)}
	switch p.Arch {
	case ArchX86_64, ArchAarch64:
	default:
		return Platform{}, fmt.Errorf("unsupported architecture %q in %q", arch, s)
	}
	switch p.OS {
	case OSLinux, OSDarwin:
	default:
		return Platform{}, fmt.Errorf("unsupported OS %q in %q", os, s)
	}
	return p, nil
}

// Matrix is the ordered set of platforms a build fans out over.
type Matrix struct {
	platforms []Platform
}

// DefaultMatrix returns the cross product of the supported architectures and
// operating systems, in a stable order.
func DefaultMatrix() *Matrix {
	var ps []Platform
	for _, arch := range []Arch{ArchX86_64, ArchAarch64} {
		for _, os := range []OS{OSLinux, OSDarwin} {
			ps = append(ps, Platform{Arch: arch, OS: os})
		}
	}
	return &Matrix{platforms: ps}
}

// NewMatrix builds a matrix from an explicit platform list, dropping
// duplicates while preserving first-seen order.
func NewMatrix(platforms ...Platform) *Matrix {
	seen := make(map[Platform]bool, len(platforms))
	var ps []Platform
	for _, p := range platforms {
		if seen[p] {
			continue
		}
		seen[p] = true
		ps = append(ps, p)
	}
	return &Matrix{platforms: ps}
}

// Platforms returns a copy of the platform list.
func (m *Matrix) Platforms() []Platform {
	out := make([]Platform, len(m.platforms))
	copy(out, m.platforms)
	return out
}

// Len reports the number of platforms in the matrix.
func (m *Matrix) Len() int { return len(m.platforms) }

// ForEach invokes the builder once per platform and collects the results
// keyed by canonical identifier. The builder must be referentially
// transparent in the platform: same platform in, same composed output out.
// The first builder error aborts the iteration.
func ForEach[T any](m *Matrix, builder func(Platform) (T, error)) (map[string]T, error) {
	out := make(map[string]T, len(m.platforms))
	for _, p := range m.platforms {
		v, err := builder(p)
		if err != nil {
			return nil, fmt.Errorf("building for %s: %w", p, err)
		}
		out[p.String()] = v
	}
	return out, nil
}

// Identifiers returns the sorted canonical identifiers of the matrix, handy
// for logging and deterministic output listings.
func (m *Matrix) Identifiers() []string {
	ids := make([]string, 0, len(m.platforms))
	for _, p := range m.platforms {
		ids = append(ids, p.String())
	}
	sort.Strings(ids)
	return ids
}
