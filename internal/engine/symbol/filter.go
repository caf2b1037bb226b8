package symbol

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Filter matches fully qualified names against glob patterns written with
// backslash separators, e.g. `*\Internal\*`. A `*` spans namespace segments.
type Filter struct {
	globs []glob.Glob
}

func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		g, err := glob.Compile(globForm(Normalize(p)))
		if err != nil {
			return nil, fmt.Errorf("invalid symbol pattern %q: %w", p, err)
		}
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Match reports whether name matches any pattern. A nil Filter matches nothing.
func (f *Filter) Match(name string) bool {
	if f == nil {
		return false
	}
	target := globForm(Normalize(name))
	for _, g := range f.globs {
		if g.Match(target) {
			return true
		}
	}
	return false
}

// globForm swaps namespace separators for slashes, since gobwas/glob treats a
// backslash as an escape.
func globForm(name string) string {
	return strings.ReplaceAll(name, Separator, "/")
}
