// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindFilesByExtension returns the full paths of all files under rootPath
// ending with the given extension. If rootPath is itself a matching file it
// is returned as the only result.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if strings.HasSuffix(rootPath, extension) {
			return []string{rootPath}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
