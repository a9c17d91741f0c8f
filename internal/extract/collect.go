package extract

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIncludes matches the document types spec corpora are delivered as.
var DefaultIncludes = []string{"**/*.pdf", "**/*.txt", "**/*.md"}

// skippedDirs are never descended into during collection.
var skippedDirs = []string{".git", "node_modules", ".repeal", "vendor"}

// CollectFiles walks root and returns the relative paths of spec documents
// matching the include globs and not matching the exclude globs. Results
// are sorted so ingestion order is reproducible.
func CollectFiles(root string, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = DefaultIncludes
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, skip := range skippedDirs {
				if strings.EqualFold(d.Name(), skip) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if matchesAny(rel, include) && !matchesAny(rel, exclude) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// matchesAny checks if relPath matches any of the given glob patterns,
// against both the full relative path and the bare filename.
func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)

		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}

		base := filepath.Base(normalized)
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
