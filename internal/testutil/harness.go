// Package testutil carries shared helpers for package tests: a concurrency
// safe log buffer, temp-dir fixture writers, and canned manifest and lock
// file contents.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packforge/packforge/internal/lockfile"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteFiles writes the given relative-path -> content map under dir,
// creating intermediate directories as needed.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// LockFor renders lock file contents whose recorded checksums agree with
// the given declarations.
func LockFor(decls ...lockfile.Declaration) string {
	var b bytes.Buffer
	b.WriteString("version = 1\n")
	for _, d := range decls {
		fmt.Fprintf(&b, "\n[[package]]\nname = %q\nversion = %q\nchecksum = %q\n",
			d.Name, d.Version, d.Checksum())
	}
	return b.String()
}

// FakeTool writes an executable shell script that answers the artifact
// generator's subcommands: `util mangen` emits a manual page and
// `util completion --<shell>` emits a completion script. Any other
// invocation exits non-zero.
func FakeTool(t *testing.T, dir, name string) string {
	t.Helper()
	script := `#!/bin/sh
if [ "$1" = "util" ] && [ "$2" = "mangen" ]; then
  echo ".TH ` + name + ` 1"
  exit 0
fi
if [ "$1" = "util" ] && [ "$2" = "completion" ]; then
  case "$3" in
    --bash|--zsh|--fish) echo "# completion for $3"; exit 0 ;;
  esac
fi
exit 1
`
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
