package doc

import (
	"regexp"
	"strings"

	"refdoc/internal/engine/symbol"
)

// Document is the rendered-to-be view of one symbol. Exactly one of Class
// and Callable is set: Class for classes, interfaces and traits, Callable
// for functions and methods.
type Document struct {
	Kind        symbol.Kind
	Name        string         // fully qualified, or the bare name for methods
	Symbol      *symbol.Symbol // the page owner; the declaring class for methods
	Title       string
	Description string
	Authors     []string
	SeeAlso     []string // @see values and linkable resolved references, in first-seen order
	Ignore      bool

	Class    *ClassBody
	Callable *CallableBody
}

type ClassBody struct {
	Constants  []Constant
	Properties []Property
	Methods    []*Document
}

type CallableBody struct {
	Params []Param
	Return *Return
}

type Param struct {
	Name        string // with the leading $
	Type        string
	Description string
	Variadic    bool
	Optional    bool
	Default     string
}

type Return struct {
	Type        string
	Description string
}

type Property struct {
	Name        string // without the leading $
	Type        string
	Description string
}

type Constant struct {
	Name        string
	Value       string
	Description string
}

// Owner is the fully qualified name whose page holds this document.
func (d *Document) Owner() string {
	if d.Symbol == nil {
		return symbol.Normalize(d.Name)
	}
	return d.Symbol.Name()
}

func (d *Document) addSeeAlso(refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		dup := false
		for _, existing := range d.SeeAlso {
			if existing == ref {
				dup = true
				break
			}
		}
		if !dup {
			d.SeeAlso = append(d.SeeAlso, ref)
		}
	}
}

// Signature renders name(Type $a, Type ...$b = default): Return. Documents
// without a callable body render as their name.
func (d *Document) Signature() string {
	name := d.Name
	if d.Kind == symbol.KindFunction {
		name = strings.TrimPrefix(name, symbol.Separator)
	}
	if d.Callable == nil {
		return name
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString("(")
	for i, p := range d.Callable.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Type)
		sb.WriteString(" ")
		if p.Variadic {
			sb.WriteString("...")
		}
		sb.WriteString(p.Name)
		if p.Optional {
			sb.WriteString(" = ")
			sb.WriteString(p.Default)
		}
	}
	sb.WriteString(")")
	if d.Callable.Return != nil && d.Callable.Return.Type != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Callable.Return.Type)
	}
	return sb.String()
}

var (
	nonWordRe = regexp.MustCompile(`[^\w ]+`)
	spacesRe  = regexp.MustCompile(` +`)
)

// Anchor is the markdown heading slug of the signature.
func (d *Document) Anchor() string {
	return Anchor(d.Signature())
}

func Anchor(heading string) string {
	slug := strings.ToLower(heading)
	slug = nonWordRe.ReplaceAllString(slug, " ")
	slug = spacesRe.ReplaceAllString(slug, " ")
	slug = strings.ReplaceAll(slug, " ", "-")
	return strings.Trim(slug, "-")
}
