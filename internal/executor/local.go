package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/packforge/packforge/internal/artifacts"
	"github.com/packforge/packforge/internal/builderr"
	"github.com/packforge/packforge/internal/ctxlog"
	"github.com/packforge/packforge/internal/descriptor"
	"github.com/packforge/packforge/internal/srcfilter"
)

// Local executes descriptors in a sandbox directory on the local machine.
// Within one descriptor the phases run strictly sequentially: stage sources,
// build, pre-check plus test, install, generate artifacts, publish. The
// publish step is a single rename, so a platform's output either exists
// completely or not at all.
type Local struct {
	// OutRoot is the directory published platform outputs land under, one
	// subdirectory per platform identifier.
	OutRoot string
}

// NewLocal creates a local executor publishing under outRoot.
func NewLocal(outRoot string) *Local {
	return &Local{OutRoot: outRoot}
}

// Execute runs one descriptor. Any phase failure aborts the build and
// removes the staging directories; nothing is published on failure.
func (l *Local) Execute(ctx context.Context, desc *descriptor.BuildDescriptor) (*Outputs, error) {
	logger := ctxlog.FromContext(ctx).With("platform", desc.Platform, "package", desc.Name)

	sandbox, err := os.MkdirTemp("", "packforge-sandbox-*")
	if err != nil {
		return nil, fmt.Errorf("creating sandbox: %w", err)
	}
	defer os.RemoveAll(sandbox)

	if err := os.MkdirAll(l.OutRoot, 0o755); err != nil {
		return nil, fmt.Errorf("creating output root: %w", err)
	}
	// Staged on the same filesystem as the final output so publish can be
	// one atomic rename.
	outTmp, err := os.MkdirTemp(l.OutRoot, ".staging-"+desc.Platform+"-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging output: %w", err)
	}
	defer os.RemoveAll(outTmp)

	srcDir := filepath.Join(sandbox, "src")
	filter, err := srcfilter.New(desc.Source.Root, desc.Source.Exclude)
	if err != nil {
		return nil, err
	}
	if err := filter.Stage(srcDir); err != nil {
		return nil, fmt.Errorf("staging filtered sources: %w", err)
	}
	logger.Debug("Sources staged into sandbox.", "src", srcDir)

	env := sandboxEnv(desc.Env, sandbox)

	logger.Info("Build phase starting.")
	if out, err := l.runPhase(ctx, srcDir, env, desc.BuildCommand); err != nil {
		return nil, fmt.Errorf("build phase failed: %w\n%s", err, out)
	}

	// The pre-check hook raises diagnostic verbosity for the test phase
	// only; it never alters build output.
	checkEnv := env
	for k, v := range desc.PreCheck.Env {
		checkEnv = append(checkEnv, k+"="+v)
	}
	logger.Info("Check phase starting.", "hook", desc.PreCheck.Name)
	if out, err := l.runPhase(ctx, srcDir, checkEnv, desc.CheckCommand); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &builderr.TestFailure{ExitCode: exitErr.ExitCode(), Output: out}
		}
		return nil, fmt.Errorf("check phase failed: %w\n%s", err, out)
	}

	installed := filepath.Join(outTmp, filepath.FromSlash(desc.BinaryPath))
	if err := installFile(filepath.Join(srcDir, filepath.FromSlash(desc.BuildOutput)), installed); err != nil {
		return nil, fmt.Errorf("installing binary: %w", err)
	}
	logger.Debug("Binary installed.", "path", installed)

	gen := &artifacts.Generator{
		Binary: installed,
		Name:   desc.Name,
		OutDir: outTmp,
		Env:    env,
	}
	arts, err := gen.Run(ctx)
	if err != nil {
		return nil, err
	}

	final := filepath.Join(l.OutRoot, desc.Platform)
	if err := os.Rename(outTmp, final); err != nil {
		return nil, fmt.Errorf("publishing output: %w", err)
	}
	logger.Info("Build published.", "output", final, "artifacts", len(arts))

	return &Outputs{
		Root:      final,
		Binary:    filepath.Join(final, filepath.FromSlash(desc.BinaryPath)),
		Artifacts: arts,
	}, nil
}

// runPhase executes one phase command in the sandbox and returns its
// combined output.
func (l *Local) runPhase(ctx context.Context, dir string, env []string, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("phase has no command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = env

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	return buf.String(), err
}

// sandboxEnv builds the hermetic phase environment: the descriptor's
// bindings plus the minimum host passthrough the toolchain needs. Ambient
// host variables never leak in.
func sandboxEnv(bindings map[string]string, sandbox string) []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + sandbox,
		"TMPDIR=" + sandbox,
	}
	for k, v := range bindings {
		env = append(env, k+"="+v)
	}
	return env
}

func installFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o755)
}
