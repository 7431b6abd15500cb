// Package srcfilter decides which paths from a source tree enter the build
// sandbox. A Filter compiles an ordered list of exclusion patterns once and
// then answers pure, deterministic keep/drop queries; staging a filtered
// copy of the tree is layered on top of that predicate.
package srcfilter

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Filter holds a source root and its compiled exclusion patterns.
type Filter struct {
	root     string
	patterns []*regexp.Regexp
}

// New compiles the ordered pattern list against the given root. A pattern is
// a regular expression that must match the entire relative path string for
// the path to be excluded; substring hits do not count. Directory paths are
// matched with a trailing slash so a pattern like `^target/` can name a
// whole subtree.
func New(root string, patterns []string) (*Filter, error) {
	f := &Filter{root: filepath.Clean(root)}
	for _, pat := range patterns {
		re, err := regexp.Compile(`\A(?:` + pat + `)\z`)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", pat, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Root returns the source root the filter was built for.
func (f *Filter) Root() string { return f.root }

// Rel computes the path relative to the filter's root, stripping the root
// prefix exactly once. Paths outside the root are returned unchanged.
func (f *Filter) Rel(path string) string {
	rel := strings.TrimPrefix(filepath.Clean(path), f.root)
	rel = strings.TrimPrefix(rel, string(filepath.Separator))
	return filepath.ToSlash(rel)
}

// Keep reports whether the path belongs in the filtered source tree. The
// decision is a pure function of (root, patterns, path, isDir): the path is
// excluded iff any pattern fully matches its relative path string, where a
// directory's relative path carries a trailing slash. An empty pattern set
// keeps everything. Excluding a directory excludes its subtree when the
// filter is applied by a tree walk, because the walk never descends into a
// dropped directory.
func (f *Filter) Keep(path string, isDir bool) bool {
	rel := f.Rel(path)
	if rel == "" {
		return true // the root itself
	}
	if isDir {
		rel += "/"
	}
	for _, re := range f.patterns {
		if re.MatchString(rel) {
			return false
		}
	}
	return true
}

// Stage copies the kept portion of the source tree under dst, preserving
// relative layout and file modes. Directories that the filter drops are
// pruned without being read. Symlinks are not followed; their targets are
// copied verbatim as link entries.
func (f *Filter) Stage(dst string) error {
	return filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !f.Keep(path, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, filepath.FromSlash(f.Rel(path)))
		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
