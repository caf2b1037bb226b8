package alias

import (
	"regexp"
	"strings"

	"refdoc/internal/engine/symbol"
)

var (
	useDirectiveRe = regexp.MustCompile(`(?m)^[ \t]*use\s+(?:(function|const)\s+)?([^;{]+(?:\{[^}]*\})?)\s*;`)
	aliasClauseRe  = regexp.MustCompile(`(?i)^(.+?)\s+as\s+(\S+)$`)
)

// Directive is one imported name from a use statement.
type Directive struct {
	Path  string // fully qualified, leading separator
	Alias string // explicit alias or the final path segment
	Kind  string // "", "function" or "const"
}

// ParseDirectives extracts every import directive from raw source text.
// Group imports (use A\{B, C as D};) and comma lists are expanded.
func ParseDirectives(source string) []Directive {
	if strings.TrimSpace(source) == "" {
		return nil
	}
	var out []Directive
	for _, match := range useDirectiveRe.FindAllStringSubmatch(source, -1) {
		kind := match[1]
		body := strings.TrimSpace(match[2])
		for _, clause := range expandClauses(body) {
			if d, ok := parseClause(clause, kind); ok {
				out = append(out, d)
			}
		}
	}
	return out
}

func expandClauses(body string) []string {
	open := strings.Index(body, "{")
	if open < 0 {
		return splitTrimmed(body)
	}
	closeIdx := strings.LastIndex(body, "}")
	if closeIdx < open {
		return splitTrimmed(body)
	}
	prefix := strings.TrimSpace(body[:open])
	if !strings.HasSuffix(prefix, symbol.Separator) {
		prefix += symbol.Separator
	}
	var clauses []string
	for _, item := range splitTrimmed(body[open+1 : closeIdx]) {
		clauses = append(clauses, prefix+strings.TrimLeft(item, symbol.Separator))
	}
	return clauses
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseClause(clause, kind string) (Directive, bool) {
	clause = strings.Join(strings.Fields(clause), " ")
	if clause == "" {
		return Directive{}, false
	}
	path, alias := clause, ""
	if m := aliasClauseRe.FindStringSubmatch(clause); m != nil {
		path, alias = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if strings.ContainsAny(path, " ()$") {
		return Directive{}, false
	}
	path = symbol.Normalize(path)
	if path == "" {
		return Directive{}, false
	}
	if alias == "" {
		alias = symbol.Basename(path)
	}
	return Directive{Path: path, Alias: alias, Kind: kind}, true
}
