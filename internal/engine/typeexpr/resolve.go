package typeexpr

import (
	"strings"

	"refdoc/internal/engine/symbol"
)

// Aliases resolves a short name, returning it unchanged on a miss.
type Aliases interface {
	Resolve(name string) string
}

// Result is the outcome of resolving one type expression.
type Result struct {
	Text       string
	References []string // every resolved atom, in resolution order
	Expr       Expr
}

// Resolve parses text and substitutes aliases in every atom. It is total
// over non-empty input.
func Resolve(aliases Aliases, text string) Result {
	r := &resolution{aliases: aliases}
	resolved := r.expr(Parse(text))
	return Result{
		Text:       resolved.String(),
		References: r.refs,
		Expr:       resolved,
	}
}

type resolution struct {
	aliases Aliases
	refs    []string
}

func (r *resolution) expr(e Expr) Expr {
	switch n := e.(type) {
	case *Atom:
		return r.atom(n.Name)
	case *Nullable:
		return &Nullable{Inner: r.expr(n.Inner)}
	case *ArraySuffix:
		return &ArraySuffix{Inner: r.expr(n.Inner)}
	case *Parenthesized:
		return &Parenthesized{Inner: r.expr(n.Inner)}
	case *Union:
		out := &Union{Alternatives: make([]Expr, 0, len(n.Alternatives))}
		for _, alt := range n.Alternatives {
			out.Alternatives = append(out.Alternatives, r.expr(alt))
		}
		return out
	case *Callable:
		out := &Callable{}
		if n.Params != nil {
			out.Params = r.expr(n.Params)
		}
		if n.Return != nil {
			out.Return = r.expr(n.Return)
		}
		return out
	case *ArrayShape:
		out := &ArrayShape{Items: make([]ShapeItem, 0, len(n.Items))}
		for _, item := range n.Items {
			out.Items = append(out.Items, ShapeItem{Key: item.Key, Value: r.expr(item.Value)})
		}
		return out
	case *Generic:
		// Arguments resolve before the main type.
		args := make([]Expr, 0, len(n.Args))
		for _, arg := range n.Args {
			args = append(args, r.expr(arg))
		}
		return &Generic{Main: r.expr(n.Main), Args: args}
	default:
		return e
	}
}

func (r *resolution) atom(name string) Expr {
	if name == "" {
		return &Atom{}
	}
	res := name
	if r.aliases != nil && !symbol.IsScalar(name) {
		res = r.aliases.Resolve(name)
	}
	if !symbol.IsScalar(res) && strings.Contains(res, symbol.Separator) && !strings.HasPrefix(res, symbol.Separator) {
		res = symbol.Separator + res
	}
	r.refs = append(r.refs, res)
	return &Atom{Name: res}
}
