// Package executor defines the build-executor capability the core depends
// on, and a local sandboxed implementation of it. The contract is narrow:
// submit one hermetic build descriptor, receive either the complete output
// set (binary plus all artifacts) or a fatal failure with logs. There is no
// partially-published state.
package executor

import (
	"context"

	"github.com/packforge/packforge/internal/artifacts"
	"github.com/packforge/packforge/internal/descriptor"
)

// Outputs is the complete, published result of one descriptor's build.
type Outputs struct {
	// Root is the published output directory for the platform.
	Root string
	// Binary is the installed binary path, absolute.
	Binary string
	// Artifacts are the post-install outputs, relative to Root.
	Artifacts []artifacts.Artifact
}

// Executor is responsible for executing one hermetic build descriptor
// end to end.
type Executor interface {
	Execute(ctx context.Context, desc *descriptor.BuildDescriptor) (*Outputs, error)
}
