package pkgset

import "github.com/packforge/packforge/internal/platform"

// Toolchain package names rebound by the pin overlay. The compiler and its
// build tool always move together so a set can never mix toolchain
// versions.
const (
	CompilerPackage  = "rustc"
	BuildToolPackage = "cargo"
)

// ToolchainOverlay returns an overlay that rebinds the compiler and its
// associated build tool to the pinned version for the given platform. All
// other entries of the incoming set pass through untouched, so the overlay
// composes associatively with any other overlay in the fold.
func ToolchainOverlay(version string, target platform.Platform) Overlay {
	return Extend(
		Package{Name: CompilerPackage, Version: version, Platform: target},
		Package{Name: BuildToolPackage, Version: version, Platform: target},
	)
}

// DefaultBase returns the stock package set for a platform: the unpinned
// toolchain plus the build-time libraries a typical manifest references.
// Manifests that need more entries extend the set with additional overlays.
func DefaultBase(target platform.Platform) Set {
	names := []string{
		CompilerPackage,
		BuildToolPackage,
		"pkg-config",
		"openssl",
		"zstd",
		"libssh2",
		"libgit2",
	}
	if target.OS.Kind() == platform.DarwinLike {
		names = append(names, "Security", "libiconv")
	}
	s := make(Set, len(names))
	for _, name := range names {
		s[name] = Package{Name: name, Version: "stable", Platform: target}
	}
	return s
}
