package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Scan resolves the given paths to parsed-filing JSON files. A path that is
// a file is taken as-is; a directory is walked recursively. Include patterns
// (doublestar syntax) match against the slash-normalized path relative to
// the walked directory, then against the base name; no patterns means every
// .json file. Hidden directories are skipped. The result is sorted so runs
// are reproducible.
func Scan(ctx context.Context, paths []string, includes []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if !info.IsDir() {
			if matchesInclude(filepath.Base(path), includes) {
				files = append(files, path)
			}
			continue
		}

		root := path
		err = filepath.WalkDir(root, func(entry string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("failed to access %s: %w", entry, err)
			}
			if d.IsDir() {
				if entry != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(entry) != ".json" {
				return nil
			}

			rel, err := filepath.Rel(root, entry)
			if err != nil {
				return fmt.Errorf("failed to compute relative path for %s: %w", entry, err)
			}
			if matchesInclude(filepath.ToSlash(rel), includes) {
				files = append(files, entry)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// matchesInclude reports whether the relative path passes the include
// patterns. A pattern matches the full relative path or the base name.
func matchesInclude(relPath string, includes []string) bool {
	if len(includes) == 0 {
		return true
	}
	base := filepath.Base(relPath)
	for _, pattern := range includes {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
