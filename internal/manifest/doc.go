// Package manifest loads the declarative build manifest. A manifest is one
// or more HCL files describing the project (name, version, source root,
// exclusion patterns), the pinned toolchain, the system package lists, the
// pinned dependency graph declarations, the build environment, and the
// development shell. The loader parses and translates the files into a
// format-agnostic Model; nothing downstream of this package touches HCL.
package manifest
