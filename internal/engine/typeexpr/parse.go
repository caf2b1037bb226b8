package typeexpr

import (
	"regexp"
	"strings"
)

const (
	callablePrefix = "callable("
	shapePrefix    = "array{"
)

var shapeKeyRe = regexp.MustCompile(`(?s)^((?:[A-Za-z0-9_\-]+|'[^']*'|"[^"]*")\??)\s*:\s*(.+)$`)

// Parse builds a syntax tree for text. It never fails: text that matches no
// structured form becomes an Atom.
//
// Forms are tried against the whole span in fixed order: array suffix,
// parenthesized group, top-level union, callable, array shape, generic,
// nullable, atom.
func Parse(text string) Expr {
	text = strings.TrimSpace(text)

	if len(text) > 2 && strings.HasSuffix(text, "[]") {
		return &ArraySuffix{Inner: Parse(text[:len(text)-2])}
	}

	if len(text) > 2 && text[0] == '(' && matchingClose(text, 0) == len(text)-1 {
		return &Parenthesized{Inner: Parse(text[1 : len(text)-1])}
	}

	if parts := SplitTopLevel('|', text); len(parts) > 1 {
		union := &Union{Alternatives: make([]Expr, 0, len(parts))}
		for _, part := range parts {
			union.Alternatives = append(union.Alternatives, Parse(part))
		}
		return union
	}

	if c, ok := parseCallable(text); ok {
		return c
	}

	if strings.HasPrefix(text, shapePrefix) && strings.HasSuffix(text, "}") {
		return parseShape(text[len(shapePrefix) : len(text)-1])
	}

	if g, ok := parseGeneric(text); ok {
		return g
	}

	if len(text) > 1 && text[0] == '?' {
		return &Nullable{Inner: Parse(text[1:])}
	}

	return &Atom{Name: text}
}

func parseCallable(text string) (*Callable, bool) {
	if !strings.HasPrefix(text, callablePrefix) {
		return nil, false
	}
	open := len(callablePrefix) - 1
	closeIdx := matchingClose(text, open)
	if closeIdx < 0 {
		return nil, false
	}
	c := &Callable{}
	if inner := strings.TrimSpace(text[open+1 : closeIdx]); inner != "" {
		c.Params = Parse(inner)
	}
	rest := strings.TrimSpace(text[closeIdx+1:])
	switch {
	case rest == "":
		return c, true
	case strings.HasPrefix(rest, ":") && strings.TrimSpace(rest[1:]) != "":
		c.Return = Parse(rest[1:])
		return c, true
	default:
		return nil, false
	}
}

func parseShape(inner string) *ArrayShape {
	shape := &ArrayShape{}
	if strings.TrimSpace(inner) == "" {
		return shape
	}
	for _, element := range SplitTopLevel(',', inner) {
		if element == "" {
			continue
		}
		if m := shapeKeyRe.FindStringSubmatch(element); m != nil {
			shape.Items = append(shape.Items, ShapeItem{Key: m[1], Value: Parse(m[2])})
			continue
		}
		shape.Items = append(shape.Items, ShapeItem{Value: Parse(element)})
	}
	return shape
}

func parseGeneric(text string) (*Generic, bool) {
	last := len(text) - 1
	if last < 3 || text[last] != '>' {
		return nil, false
	}
	open := matchingOpen(text, last)
	if open <= 0 || text[open] != '<' {
		return nil, false
	}
	args := strings.TrimSpace(text[open+1 : last])
	main := strings.TrimSpace(text[:open])
	if args == "" || main == "" {
		return nil, false
	}
	g := &Generic{Main: Parse(main)}
	for _, arg := range SplitTopLevel(',', args) {
		g.Args = append(g.Args, Parse(arg))
	}
	return g, true
}
