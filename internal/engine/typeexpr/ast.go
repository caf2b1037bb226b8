// Package typeexpr parses free-form PHPDoc type annotations into a small
// syntax tree and resolves the names inside them against an alias table.
package typeexpr

import (
	"strings"
)

// Expr is a node of a parsed type expression.
type Expr interface {
	String() string
	expr()
}

// Atom is a bare name such as int, Foo or \App\Foo.
type Atom struct {
	Name string
}

// Nullable is ?Inner.
type Nullable struct {
	Inner Expr
}

// ArraySuffix is Inner[].
type ArraySuffix struct {
	Inner Expr
}

// Union is A|B|C, in source order.
type Union struct {
	Alternatives []Expr
}

// Callable is callable(Params), optionally followed by ": Return".
// Params is nil for an empty parameter list.
type Callable struct {
	Params Expr
	Return Expr
}

// ShapeItem is one element of an array shape; Key is empty for bare values.
type ShapeItem struct {
	Key   string
	Value Expr
}

// ArrayShape is array{key: Type, ...}.
type ArrayShape struct {
	Items []ShapeItem
}

// Generic is Main<Arg1, Arg2, ...>.
type Generic struct {
	Main Expr
	Args []Expr
}

// Parenthesized is (Inner).
type Parenthesized struct {
	Inner Expr
}

func (*Atom) expr()          {}
func (*Nullable) expr()      {}
func (*ArraySuffix) expr()   {}
func (*Union) expr()         {}
func (*Callable) expr()      {}
func (*ArrayShape) expr()    {}
func (*Generic) expr()       {}
func (*Parenthesized) expr() {}

func (a *Atom) String() string { return a.Name }

func (n *Nullable) String() string { return "?" + n.Inner.String() }

func (a *ArraySuffix) String() string { return a.Inner.String() + "[]" }

func (u *Union) String() string {
	return joinExprs(u.Alternatives, "|")
}

func (c *Callable) String() string {
	var b strings.Builder
	b.WriteString("callable(")
	if c.Params != nil {
		b.WriteString(c.Params.String())
	}
	b.WriteString(")")
	if c.Return != nil {
		b.WriteString(": ")
		b.WriteString(c.Return.String())
	}
	return b.String()
}

func (s *ArrayShape) String() string {
	parts := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		if item.Key == "" {
			parts = append(parts, item.Value.String())
			continue
		}
		parts = append(parts, item.Key+": "+item.Value.String())
	}
	return "array{" + strings.Join(parts, ", ") + "}"
}

func (g *Generic) String() string {
	return g.Main.String() + "<" + joinExprs(g.Args, ", ") + ">"
}

func (p *Parenthesized) String() string { return "(" + p.Inner.String() + ")" }

func joinExprs(exprs []Expr, sep string) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, sep)
}
