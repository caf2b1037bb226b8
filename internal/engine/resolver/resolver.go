package resolver

import (
	"regexp"
	"strings"

	"refdoc/internal/engine/alias"
	"refdoc/internal/engine/symbol"
	"refdoc/internal/engine/typeexpr"
	"refdoc/internal/shared/observability"
)

// Resolver resolves type annotations written inside a symbol's docblocks.
// Alias tables must be complete before the first call; afterwards the
// resolver is safe for concurrent use.
type Resolver struct {
	tables map[string]*alias.Table
}

func NewResolver(tables map[string]*alias.Table) *Resolver {
	if tables == nil {
		tables = make(map[string]*alias.Table)
	}
	return &Resolver{tables: tables}
}

// Table returns the alias table owned by name. Symbols without a table get
// nil, which resolves every name to itself.
func (r *Resolver) Table(owner string) *alias.Table {
	return r.tables[symbol.Normalize(owner)]
}

// Resolve rewrites text with every short name replaced by its fully
// qualified form and returns the referenced names in resolution order.
func (r *Resolver) Resolve(owner, text string) (string, []string) {
	res := r.ResolveExpr(owner, text)
	return res.Text, res.References
}

func (r *Resolver) ResolveExpr(owner, text string) typeexpr.Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return typeexpr.Result{}
	}
	observability.TypeExpressionsResolved.Inc()
	return typeexpr.Resolve(r.Table(owner), text)
}

// qualifiedName matches a PHP class or function name, optionally qualified.
var qualifiedName = regexp.MustCompile(`^\\?[A-Za-z_\x80-\xff][A-Za-z0-9_\x80-\xff]*(\\[A-Za-z_\x80-\xff][A-Za-z0-9_\x80-\xff]*)*$`)

// Linkable filters references down to names worth a see-also entry:
// scalars, the owner itself, and anything that is not a qualified name are
// dropped. Order is kept and
// duplicates are removed.
func Linkable(owner string, refs []string) []string {
	owner = symbol.Normalize(owner)
	seen := make(map[string]struct{}, len(refs))
	var out []string
	for _, ref := range refs {
		if ref == "" || symbol.IsScalar(ref) || ref == owner || !qualifiedName.MatchString(ref) {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
