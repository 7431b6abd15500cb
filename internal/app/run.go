package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/packforge/packforge/internal/ctxlog"
	"github.com/packforge/packforge/internal/dag"
	"github.com/packforge/packforge/internal/descriptor"
	"github.com/packforge/packforge/internal/devshell"
	"github.com/packforge/packforge/internal/pkgset"
	"github.com/packforge/packforge/internal/platform"
)

// Run composes the per-platform outputs and, unless this is a dry run,
// schedules the builds on the executor.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	matrix, err := a.matrix()
	if err != nil {
		return err
	}
	a.logger.Info("Platform matrix resolved.", "systems", matrix.Identifiers())

	outputs, err := platform.ForEach(matrix, a.compose)
	if err != nil {
		return err
	}
	a.outputs = outputs

	if a.config.DryRun {
		a.logger.Info("Dry run: descriptors assembled, skipping execution.")
		enc := json.NewEncoder(a.outW)
		enc.SetIndent("", "  ")
		return enc.Encode(outputs)
	}

	graph := dag.New()
	for id, out := range outputs {
		// Platform builds are independent of each other; every node is a
		// root and the worker pool supplies the parallelism.
		id, out := id, out
		graph.AddNode("build."+id, func(ctx context.Context) error {
			desc := out.Packages[a.model.Project.Name]
			result, err := a.exec.Execute(ctx, desc)
			if err != nil {
				return fmt.Errorf("platform %s: %w", id, err)
			}
			out.Result = result
			out.App.Binary = result.Binary
			return nil
		})
	}

	a.logger.Info("🚀 Starting builds.", "platforms", graph.Len(), "workers", a.config.WorkerCount)
	exec := dag.NewExecutor(graph, a.config.WorkerCount)
	if err := exec.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 All platform builds published.")

	a.logger.Debug("App.Run method finished.")
	return nil
}

// compose assembles one platform's full output surface. It is referentially
// transparent in the platform: the same platform always composes the same
// descriptor.
func (a *App) compose(target platform.Platform) (*Output, error) {
	set := pkgset.Compose(
		pkgset.DefaultBase(target),
		pkgset.ToolchainOverlay(a.model.Toolchain.Channel, target),
	)

	desc, err := descriptor.Assemble(descriptor.Inputs{
		Model:     a.model,
		Platform:  target,
		Set:       set,
		Lock:      a.lock,
		SourceRev: a.config.SourceRev,
	})
	if err != nil {
		return nil, err
	}

	shell := devshell.Assemble(a.model, target, set)
	return newOutput(desc, shell, a.model.Formatter), nil
}
