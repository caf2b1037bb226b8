package helpers

import (
	"os"
	"strings"
)

func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[]{}")
}

// IsPathOverlap reports whether either path contains the other.
func IsPathOverlap(a, b string) bool {
	if a == b {
		return true
	}
	if strings.HasPrefix(a, b+string(os.PathSeparator)) {
		return true
	}
	if strings.HasPrefix(b, a+string(os.PathSeparator)) {
		return true
	}
	return false
}
