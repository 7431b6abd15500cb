// Package artifacts runs the post-install hook that turns the freshly built
// binary into its auxiliary outputs: the section-1 manual page and one
// completion script per supported shell. The generator runs inside the same
// build sandbox, strictly after the binary exists and before the build is
// declared complete; any failure is fatal to the whole build.
package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/packforge/packforge/internal/builderr"
	"github.com/packforge/packforge/internal/ctxlog"
)

// Artifact is one generated output file, relative to the output root.
type Artifact struct {
	Name string
	Path string
}

// shell describes one completion target. The order of this table is the
// order the generator runs in.
var shells = []struct {
	flag string
	dest string
}{
	{"--bash", "share/bash-completion/completions/%[1]s"},
	{"--zsh", "share/zsh/site-functions/_%[1]s"},
	{"--fish", "share/fish/vendor_completions.d/%[1]s.fish"},
}

// Generator invokes subcommands on the built binary and registers their
// captured output as artifacts under the output root.
type Generator struct {
	// Binary is the absolute path of the installed binary inside the
	// sandbox.
	Binary string
	// Name is the tool name used in artifact paths.
	Name string
	// OutDir is the output root artifacts are written under.
	OutDir string
	// Env is the sandbox environment the subcommands run with.
	Env []string
}

// Run generates the manual page followed by the completion scripts, in a
// fixed order. It returns the registered artifacts, or an error that aborts
// the whole build with nothing published.
func (g *Generator) Run(ctx context.Context) ([]Artifact, error) {
	logger := ctxlog.FromContext(ctx)

	var out []Artifact

	manPath := fmt.Sprintf("share/man/man1/%s.1", g.Name)
	man, err := g.capture(ctx, "util", "mangen")
	if err != nil {
		return nil, &builderr.ArtifactGenerationError{Artifact: manPath, Err: err}
	}
	if err := g.write(manPath, man); err != nil {
		return nil, &builderr.ArtifactGenerationError{Artifact: manPath, Err: err}
	}
	logger.Debug("Manual page generated.", "path", manPath, "bytes", len(man))
	out = append(out, Artifact{Name: "manpage", Path: manPath})

	for _, sh := range shells {
		dest := fmt.Sprintf(sh.dest, g.Name)
		script, err := g.capture(ctx, "util", "completion", sh.flag)
		if err != nil {
			return nil, &builderr.ArtifactGenerationError{Artifact: dest, Err: err}
		}
		if err := g.write(dest, script); err != nil {
			return nil, &builderr.ArtifactGenerationError{Artifact: dest, Err: err}
		}
		logger.Debug("Completion script generated.", "shell", sh.flag, "path", dest)
		out = append(out, Artifact{Name: "completion" + sh.flag, Path: dest})
	}

	return out, nil
}

// capture runs one subcommand on the binary and returns its stdout. A
// non-zero exit or empty output stream fails the invocation.
func (g *Generator) capture(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, g.Binary, args...)
	cmd.Env = g.Env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%v: %w (stderr: %s)", args, err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%v produced no output", args)
	}
	return stdout.Bytes(), nil
}

func (g *Generator) write(rel string, data []byte) error {
	path := filepath.Join(g.OutDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
