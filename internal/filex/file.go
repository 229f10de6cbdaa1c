// Package filex contains small filesystem helpers for locally owned
// preview artifacts (video thumbnails, converted images).
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureSubDir creates dirName under base (or the user cache dir when
// base is empty) and returns its absolute path.
func EnsureSubDir(base, dirName string) (string, error) {
	if base == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("cache dir: %w", err)
		}
		base = cache
	}

	dir := filepath.Join(base, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// RemoveQuiet deletes path and reports whether anything was removed.
// A missing file is not an error: release of a local preview handle
// must be idempotent.
func RemoveQuiet(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	err := os.Remove(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("remove %s: %w", path, err)
	}
	return true, nil
}
