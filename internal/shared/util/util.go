package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// NormalizePatternPath cleans a path into the slash form glob patterns match against.
func NormalizePatternPath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// HasPathPrefix returns true when path equals prefix or is contained within prefix.
func HasPathPrefix(path, prefix string) bool {
	path = NormalizePatternPath(path)
	prefix = NormalizePatternPath(prefix)
	if path == "" || prefix == "" {
		return path == prefix
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// WriteStringWithDirs creates parent directories (0755) and replaces path with
// content through a temp file and rename, so readers never see a partial page.
func WriteStringWithDirs(path, content string, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, ".refdoc-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", path, err)
	}
	tmpName := tmp.Name()

	var writeErr error
	if _, err := tmp.WriteString(content); err != nil {
		writeErr = fmt.Errorf("write temp file %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("close temp file %q: %w", tmpName, err)
	}
	if writeErr == nil {
		if err := os.Chmod(tmpName, perm); err != nil {
			writeErr = fmt.Errorf("chmod temp file %q: %w", tmpName, err)
		}
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return writeErr
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %q: %w", path, err)
	}
	return nil
}

// RemoveWithEmptyParents deletes path and then every parent directory left
// empty, stopping at root. A missing file is not an error.
func RemoveWithEmptyParents(root, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	root = filepath.Clean(root)
	for dir := filepath.Dir(path); dir != root && HasPathPrefix(dir, root); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return nil
		}
		if err := os.Remove(dir); err != nil {
			return nil
		}
	}
	return nil
}
