package manifest

import (
	"errors"
	"fmt"

	"github.com/packforge/packforge/internal/lockfile"
)

// Project identifies the tool being packaged and where its sources live.
type Project struct {
	// Name is the specific package name; Alias is the default output alias
	// pointing at the same package.
	Name    string
	Alias   string
	Version string
	// SourceRoot is the source tree root, relative to the manifest file's
	// directory unless absolute.
	SourceRoot string
	// Exclude is the ordered exclusion pattern list for the source filter.
	Exclude []string
}

// Toolchain is the pinned compiler toolchain.
type Toolchain struct {
	Channel string
}

// Packages are the system package lists resolved against the package set.
type Packages struct {
	Build  []string
	Link   []string
	Darwin []string
}

// DevShell describes the interactive shell output.
type DevShell struct {
	Tools []string
}

// Model is the translated, format-agnostic manifest.
type Model struct {
	Project   Project
	Toolchain Toolchain
	Packages  Packages
	Locked    []lockfile.Declaration
	Features  []string
	Env       map[string]string
	DevShell  DevShell
	Formatter string
}

// Validate checks the merged model for the fields every build needs.
func (m *Model) Validate() error {
	if m.Project.Name == "" {
		return errors.New("manifest has no project block or the project name is empty")
	}
	if m.Project.Version == "" {
		return fmt.Errorf("project %q has no version", m.Project.Name)
	}
	if m.Toolchain.Channel == "" {
		return fmt.Errorf("project %q pins no toolchain channel", m.Project.Name)
	}
	seen := make(map[string]bool, len(m.Locked))
	for _, d := range m.Locked {
		if d.Version == "" {
			return fmt.Errorf("dependency %q declares no version", d.Name)
		}
		if seen[d.Name] {
			return fmt.Errorf("dependency %q is declared twice", d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}
