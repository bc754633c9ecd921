// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. A root that is itself a regular file is
// returned as is, whatever its extension. Paths are returned sorted.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{rootPath}, nil
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

	sort.Strings(files)
	return files, nil
}

// Match is one file found below a search root.
type Match struct {
	Root string
	Path string
}

// Rel returns Path relative to Root, or its base name when the root was the
// file itself.
func (m Match) Rel() string {
	if m.Root == m.Path {
		return filepath.Base(m.Path)
	}
	rel, err := filepath.Rel(m.Root, m.Path)
	if err != nil {
		return filepath.Base(m.Path)
	}
	return rel
}

// FindAll runs FindFilesByExtension over every root and removes duplicates,
// keeping the first occurrence.
func FindAll(roots []string, extension string) ([]Match, error) {
	seen := make(map[string]bool)
	var out []Match
	for _, root := range roots {
		files, err := FindFilesByExtension(root, extension)
		if err != nil {
			return nil, fmt.Errorf("searching %s: %w", root, err)
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				out = append(out, Match{Root: root, Path: f})
			}
		}
	}
	return out, nil
}
