// Package corpus discovers input files under a corpus root.
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultCategory is used for files that sit directly under the corpus root.
const DefaultCategory = "documents"

// ScannedFile represents a regular file found under the corpus root.
type ScannedFile struct {
	RelPath  string // Slash-separated path relative to the root (e.g., "policies/gdpr.md")
	AbsPath  string // Path usable for reading
	Ext      string // Lower-case extension with leading dot, "" if none
	Category string // Derived by the scanner's CategoryFunc
}

// CategoryFunc derives a category from a slash-separated relative path.
type CategoryFunc func(relPath string) string

// FirstSegmentCategory returns the first directory under the root, or
// DefaultCategory when the file has no parent directory inside the root.
func FirstSegmentCategory(relPath string) string {
	first, _, found := strings.Cut(relPath, "/")
	if !found || first == "" {
		return DefaultCategory
	}
	return first
}

// Scanner walks a corpus directory tree.
type Scanner struct {
	category CategoryFunc
}

// NewScanner creates a scanner. A nil category func means FirstSegmentCategory.
func NewScanner(category CategoryFunc) *Scanner {
	if category == nil {
		category = FirstSegmentCategory
	}
	return &Scanner{category: category}
}

// Scan recursively lists regular files under root. Hidden files and
// directories (name starting with ".") are skipped, as are symlinks and
// other non-regular entries. Unsupported extensions are still returned;
// filtering is the caller's concern.
func (s *Scanner) Scan(ctx context.Context, root string) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		files = append(files, ScannedFile{
			RelPath:  relPath,
			AbsPath:  path,
			Ext:      strings.ToLower(filepath.Ext(path)),
			Category: s.category(relPath),
		})
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("failed to scan corpus %s: %w", root, err)
	}

	return files, nil
}
