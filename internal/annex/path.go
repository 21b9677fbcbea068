package annex

import (
	"path/filepath"
	"strings"
)

// CheckPath normalizes path to be relative to the repository root.
//
// Absolute paths must lie under the root. Relative paths are taken relative
// to the caller's working directory when that directory is inside the
// repository; otherwise they are already relative to the root and pass
// through unchanged.
func (r *Repo) CheckPath(path string) (string, error) {
	root := filepath.Clean(r.Root())
	path = filepath.Clean(path)
	if !filepath.IsAbs(path) {
		cwd, err := r.getwd()
		if err != nil {
			return "", err
		}
		if !within(root, filepath.Clean(cwd)) {
			return path, nil
		}
		path = filepath.Join(cwd, path)
	}
	if !within(root, path) {
		return "", &PathOutsideRepositoryError{Path: path, Root: root}
	}
	return filepath.Rel(root, path)
}

// within reports whether path equals root or lies beneath it.
func within(root string, path string) bool {
	if path == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
