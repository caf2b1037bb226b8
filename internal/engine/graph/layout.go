package graph

import (
	"strings"

	"refdoc/internal/engine/symbol"
)

const (
	PageExt   = ".md"
	IndexPage = "index.md"
)

// PagePath maps a fully qualified name to its page path relative to the
// output root: namespace segments become directories.
func PagePath(name string) string {
	segments := symbol.Segments(name)
	if len(segments) == 0 {
		return ""
	}
	return strings.Join(segments, "/") + PageExt
}

// IndexPath is the relative path from the page of name back to the index.
func IndexPath(name string) string {
	depth := len(symbol.Segments(name)) - 1
	if depth < 0 {
		depth = 0
	}
	return strings.Repeat("../", depth) + IndexPage
}

// RelativePath computes the link from the page of from to the page of to
// using the longest common namespace prefix. It does not consult the graph.
// Targets in the global namespace are not linkable.
func RelativePath(from, to string) (string, bool) {
	target := symbol.Segments(to)
	if len(target) < 2 {
		return "", false
	}
	targetNS := target[:len(target)-1]

	fromSegments := symbol.Segments(from)
	var fromNS []string
	if len(fromSegments) > 0 {
		fromNS = fromSegments[:len(fromSegments)-1]
	}

	common := 0
	for common < len(fromNS) && common < len(targetNS) && fromNS[common] == targetNS[common] {
		common++
	}

	parts := make([]string, 0, len(fromNS)-common+len(target)-common)
	for i := common; i < len(fromNS); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, target[common:]...)
	return strings.Join(parts, "/") + PageExt, true
}
