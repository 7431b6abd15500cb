// Package lockfile reads the pinned dependency graph a reproducible build is
// resolved against. The lock file is consumed, never written: the build
// verifies that the live dependency declarations agree with the recorded
// content hashes and aborts with an integrity error before any build step
// when they do not.
package lockfile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/packforge/packforge/internal/builderr"
)

// Entry is one pinned package record in the lock file.
type Entry struct {
	Name     string `toml:"name"`
	Version  string `toml:"version"`
	Checksum string `toml:"checksum"`
}

// File is the parsed lock file.
type File struct {
	LockVersion int     `toml:"version"`
	Packages    []Entry `toml:"package"`

	byName map[string]Entry
}

// Declaration is a live dependency declaration from the manifest, the thing
// the lock file is checked against.
type Declaration struct {
	Name    string
	Version string
}

// Checksum returns the content hash recorded for a declaration:
// sha256 over the canonical "name@version" form, hex encoded.
func (d Declaration) Checksum() string {
	sum := sha256.Sum256([]byte(d.Name + "@" + d.Version))
	return hex.EncodeToString(sum[:])
}

// Load reads and parses a lock file from disk.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lock file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes lock file contents.
func Parse(raw []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing lock file: %w", err)
	}
	f.byName = make(map[string]Entry, len(f.Packages))
	for _, e := range f.Packages {
		f.byName[e.Name] = e
	}
	return &f, nil
}

// Verify checks every live declaration against the lock file. A declaration
// that is missing from the lock, or whose recorded checksum disagrees with
// the declaration's content hash, is an integrity violation and fails the
// whole verification. Declarations are checked in order; the first
// violation wins.
func (f *File) Verify(decls []Declaration) error {
	for _, d := range decls {
		entry, ok := f.byName[d.Name]
		if !ok {
			return &builderr.IntegrityError{
				Dependency: d.Name,
				Reason:     "declared but not recorded in the lock file",
			}
		}
		if entry.Version != d.Version {
			return &builderr.IntegrityError{
				Dependency: d.Name,
				Reason: fmt.Sprintf("declared version %s but lock records %s",
					d.Version, entry.Version),
			}
		}
		if entry.Checksum != d.Checksum() {
			return &builderr.IntegrityError{
				Dependency: d.Name,
				Reason:     "recorded checksum does not match the declaration",
			}
		}
	}
	return nil
}

// Entry returns the recorded entry for a package name, if present.
func (f *File) Entry(name string) (Entry, bool) {
	e, ok := f.byName[name]
	return e, ok
}
