package helpers

import (
	"path/filepath"
	"sort"
	"strings"

	"refdoc/internal/engine/symbol"
)

// UniqueScanRoots cleans, absolutizes and deduplicates paths.
func UniqueScanRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		normalized := filepath.Clean(p)
		if abs, err := filepath.Abs(normalized); err == nil {
			normalized = filepath.Clean(abs)
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		roots = append(roots, normalized)
	}
	sort.Strings(roots)
	return roots
}

// CommonNamespace returns the longest namespace shared by every name, with a
// leading separator, or "" when the names share none.
func CommonNamespace(names []string) string {
	var common []string
	for i, name := range names {
		segs := namespaceSegments(name)
		if i == 0 {
			common = segs
			continue
		}
		n := 0
		for n < len(common) && n < len(segs) && common[n] == segs[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 0 {
		return ""
	}
	return symbol.Separator + strings.Join(common, symbol.Separator)
}

func namespaceSegments(name string) []string {
	segs := symbol.Segments(name)
	if len(segs) == 0 {
		return nil
	}
	return segs[:len(segs)-1]
}
