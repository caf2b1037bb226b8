package doc

import (
	"log/slog"
	"strings"

	"refdoc/internal/engine/docblock"
	"refdoc/internal/engine/parser"
	"refdoc/internal/engine/resolver"
	"refdoc/internal/engine/symbol"
)

const (
	defaultType = "mixed"
	constructor = "__construct"
)

// TypeResolver is the part of the resolution facade documents need.
type TypeResolver interface {
	Resolve(owner, text string) (string, []string)
}

// Builder turns declarations into documents. It only reads the alias
// tables behind its resolver, so one Builder may serve several goroutines.
type Builder struct {
	types   TypeResolver
	authors []string
}

func NewBuilder(types TypeResolver, projectAuthors []string) *Builder {
	return &Builder{types: types, authors: projectAuthors}
}

// Class builds the document of a class, interface or trait. Missing
// docblocks yield an empty title.
func (b *Builder) Class(decl parser.ClassDecl) *Document {
	sym := decl.Symbol()
	block := docblock.Parse(decl.Doc)
	d := b.header(decl.Kind, sym.Name(), sym, block)
	if d.Ignore {
		return d
	}
	body := &ClassBody{}
	d.Class = body

	for _, c := range decl.Constants {
		cb := docblock.Parse(c.Doc)
		if cb.Has(docblock.TagInternal) {
			continue
		}
		body.Constants = append(body.Constants, Constant{
			Name:        c.Name,
			Value:       c.Value,
			Description: cb.Text(),
		})
	}

	props := make(map[string]int)
	addProperty := func(p Property) {
		if i, ok := props[p.Name]; ok {
			body.Properties[i] = p
			return
		}
		props[p.Name] = len(body.Properties)
		body.Properties = append(body.Properties, p)
	}
	for _, p := range decl.Properties {
		pb := docblock.Parse(p.Doc)
		if pb.Has(docblock.TagInternal) {
			continue
		}
		typ, description := p.Type, ""
		if vars := pb.TagsNamed(docblock.TagVar); len(vars) > 0 {
			typ, description = vars[0].Type, vars[0].Description
		}
		if description == "" {
			description = pb.Text()
		}
		if typ == "" {
			typ = defaultType
		}
		addProperty(Property{
			Name:        strings.TrimPrefix(p.Name, "$"),
			Type:        b.resolve(d, typ),
			Description: description,
		})
	}
	for _, tag := range block.TagsNamed(docblock.PropertyTags...) {
		if tag.Variable == "" {
			continue
		}
		typ := tag.Type
		if typ == "" {
			typ = defaultType
		}
		addProperty(Property{
			Name:        strings.TrimPrefix(tag.Variable, "$"),
			Type:        b.resolve(d, typ),
			Description: tag.Description,
		})
	}

	for _, m := range decl.Methods {
		md := b.method(sym, m)
		if md.Ignore {
			continue
		}
		body.Methods = append(body.Methods, md)
	}
	return d
}

// Function builds the document of a top-level function. Functions without
// a docblock are ignored.
func (b *Builder) Function(decl parser.FunctionDecl) *Document {
	sym := decl.Symbol()
	if strings.TrimSpace(decl.Doc) == "" {
		slog.Warn("function has no docblock, skipping", "symbol", sym.Name(), "path", decl.Location.File)
		return &Document{Kind: symbol.KindFunction, Name: sym.Name(), Symbol: sym, Ignore: true}
	}
	block := docblock.Parse(decl.Doc)
	d := b.header(symbol.KindFunction, sym.Name(), sym, block)
	if d.Ignore {
		return d
	}
	d.Callable = b.callable(d, decl, block)
	return d
}

func (b *Builder) method(owner *symbol.Symbol, decl parser.FunctionDecl) *Document {
	block := docblock.Parse(decl.Doc)
	d := b.header(symbol.KindMethod, decl.Name, owner, block)
	if d.Ignore {
		return d
	}
	d.Callable = b.callable(d, decl, block)
	return d
}

// header fills the fields shared by every document kind. @internal and
// @deprecated mark the document ignored and stop tag processing.
func (b *Builder) header(kind symbol.Kind, name string, owner *symbol.Symbol, block docblock.Block) *Document {
	d := &Document{
		Kind:        kind,
		Name:        name,
		Symbol:      owner,
		Title:       block.Summary,
		Description: block.Description,
	}
	authors := append([]string(nil), b.authors...)
	for _, tag := range block.Tags {
		switch tag.Name {
		case docblock.TagAuthor:
			authors = append(authors, tag.Value)
		case docblock.TagInternal, docblock.TagDeprecated:
			d.Ignore = true
		case docblock.TagSee:
			d.addSeeAlso(tag.Value)
		}
		if d.Ignore {
			break
		}
	}
	d.Authors = dedupe(authors)
	return d
}

func (b *Builder) callable(d *Document, decl parser.FunctionDecl, block docblock.Block) *CallableBody {
	body := &CallableBody{}
	index := make(map[string]int, len(decl.Params))
	for _, p := range decl.Params {
		typ := p.Type
		if typ == "" {
			typ = defaultType
		}
		index[p.Name] = len(body.Params)
		body.Params = append(body.Params, Param{
			Name:     p.Name,
			Type:     typ,
			Variadic: p.Variadic,
			Optional: p.Optional,
			Default:  p.Default,
		})
	}
	for _, name := range docblock.ParamTags {
		for _, tag := range block.TagsNamed(name) {
			i, ok := index[tag.Variable]
			if !ok {
				continue
			}
			if tag.Type != "" {
				body.Params[i].Type = tag.Type
			}
			body.Params[i].Description = tag.Description
		}
	}
	for i := range body.Params {
		body.Params[i].Type = b.resolve(d, body.Params[i].Type)
	}

	if decl.Name == constructor {
		return body
	}
	var ret *Return
	for _, name := range docblock.ReturnTags {
		for _, tag := range block.TagsNamed(name) {
			ret = &Return{Type: tag.Type, Description: tag.Description}
		}
	}
	if ret == nil && decl.ReturnType != "" {
		ret = &Return{Type: decl.ReturnType}
	}
	if ret != nil {
		ret.Type = b.resolve(d, ret.Type)
		body.Return = ret
	}
	return body
}

// resolve resolves text on behalf of d's owner and records the linkable
// references as see-also entries.
func (b *Builder) resolve(d *Document, text string) string {
	if b.types == nil || strings.TrimSpace(text) == "" {
		return text
	}
	owner := d.Owner()
	resolved, refs := b.types.Resolve(owner, text)
	d.addSeeAlso(resolver.Linkable(owner, refs)...)
	return resolved
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
