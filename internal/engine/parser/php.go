package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"refdoc/internal/core/errors"
	"refdoc/internal/engine/alias"
	"refdoc/internal/engine/symbol"
	"refdoc/internal/shared/observability"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

// PHPParser extracts documented declarations from PHP source.
// Safe for concurrent use.
type PHPParser struct {
	pool    *ParserPool
	imports *ExtractorEngine
	decls   *ExtractorEngine
}

func NewPHPParser() *PHPParser {
	p := &PHPParser{pool: NewParserPool(php.GetLanguage())}
	p.imports = NewExtractorEngine(map[string]NodeHandler{
		"namespace_use_declaration": p.handleUse,
		"class_declaration":         stopWalk,
		"interface_declaration":     stopWalk,
		"trait_declaration":         stopWalk,
		"function_definition":       stopWalk,
	})
	p.decls = NewExtractorEngine(map[string]NodeHandler{
		"class_declaration":     p.handleClassLike(symbol.KindClass),
		"interface_declaration": p.handleClassLike(symbol.KindInterface),
		"trait_declaration":     p.handleClassLike(symbol.KindTrait),
		"function_definition":   p.handleFunction,
	})
	return p
}

func stopWalk(*ExtractionContext, *sitter.Node) bool { return true }

func (p *PHPParser) ParseFile(ctx context.Context, path string, content []byte) (*File, error) {
	start := time.Now()
	defer func() { observability.ParsingDuration.Observe(time.Since(start).Seconds()) }()

	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree, err := sp.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "parse failed"), errors.CtxPath, path)
	}
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		slog.Warn("php source contains syntax errors, extracting what parsed", "path", path)
	}

	file := &File{
		Path:     path,
		Hash:     contentHash(content),
		Source:   string(content),
		ParsedAt: time.Now(),
	}
	ectx := &ExtractionContext{Source: content, File: file}
	p.extractProgram(ectx, root)
	return file, nil
}

// extractProgram splits the program into namespace scopes. Statement-form
// namespaces extend to the next namespace statement; braced ones cover their
// body only.
func (p *PHPParser) extractProgram(ctx *ExtractionContext, root *sitter.Node) {
	var (
		scope []*sitter.Node
		ns    string
	)
	flush := func() {
		p.extractScope(ctx, ns, scope)
		scope = nil
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "namespace_definition" {
			scope = append(scope, child)
			continue
		}
		flush()
		name := symbol.Normalize(ctx.FieldText(child, "name", "namespace_name"))
		if body := child.ChildByFieldName("body"); body != nil {
			ns = name
			scope = namedChildren(body)
			flush()
			ns = ""
			continue
		}
		ns = name
	}
	flush()
}

func (p *PHPParser) extractScope(ctx *ExtractionContext, ns string, nodes []*sitter.Node) {
	if len(nodes) == 0 {
		return
	}
	ctx.Namespace = ns
	ctx.Imports = ""
	for _, node := range nodes {
		p.imports.Walk(ctx, node)
	}
	for _, node := range nodes {
		p.decls.Walk(ctx, node)
	}
}

func (p *PHPParser) handleUse(ctx *ExtractionContext, node *sitter.Node) bool {
	text := ctx.Text(node)
	if !strings.HasSuffix(strings.TrimSpace(text), ";") {
		text += ";"
	}
	ctx.Imports += text + "\n"
	return true
}

func (p *PHPParser) handleClassLike(kind symbol.Kind) NodeHandler {
	return func(ctx *ExtractionContext, node *sitter.Node) bool {
		name := ctx.FieldText(node, "name", "name")
		if name == "" {
			return true
		}
		decl := ClassDecl{
			Name:      qualify(ctx.Namespace, name),
			Kind:      kind,
			Abstract:  kind == symbol.KindClass && hasChildOfType(node, "abstract_modifier"),
			Final:     hasChildOfType(node, "final_modifier"),
			Namespace: ctx.Namespace,
			Imports:   ctx.Imports,
			Doc:       ctx.DocComment(node),
			Location:  ctx.Location(node),
		}
		body := node.ChildByFieldName("body")
		if body == nil {
			body = childOfType(node, "declaration_list")
		}
		if body != nil {
			p.extractMembers(ctx, &decl, body)
		}
		ctx.File.Classes = append(ctx.File.Classes, decl)
		return true
	}
}

func (p *PHPParser) handleFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name", "name")
	if name == "" {
		return true
	}
	fn := p.extractCallable(ctx, node)
	fn.Name = qualify(ctx.Namespace, name)
	fn.Namespace = ctx.Namespace
	fn.Imports = ctx.Imports
	ctx.File.Functions = append(ctx.File.Functions, fn)
	return true
}

func (p *PHPParser) extractMembers(ctx *ExtractionContext, decl *ClassDecl, body *sitter.Node) {
	for _, member := range namedChildren(body) {
		switch member.Type() {
		case "use_declaration":
			decl.Traits = append(decl.Traits, p.traitNames(ctx, member)...)
		case "const_declaration":
			if !isPublic(ctx, member) {
				continue
			}
			doc := ctx.DocComment(member)
			for _, el := range namedChildren(member) {
				if el.Type() != "const_element" {
					continue
				}
				named := namedChildren(el)
				if len(named) == 0 {
					continue
				}
				c := ConstantDecl{Name: ctx.Text(named[0]), Doc: doc}
				if len(named) > 1 {
					c.Value = ctx.Text(named[len(named)-1])
				}
				decl.Constants = append(decl.Constants, c)
			}
		case "property_declaration":
			if !isPublic(ctx, member) || hasChildOfType(member, "static_modifier") {
				continue
			}
			typ := ctx.FieldText(member, "type")
			doc := ctx.DocComment(member)
			for _, el := range namedChildren(member) {
				if el.Type() != "property_element" {
					continue
				}
				name := ctx.FieldText(el, "name", "variable_name")
				if name == "" {
					continue
				}
				decl.Properties = append(decl.Properties, PropertyDecl{Name: name, Type: typ, Doc: doc})
			}
		case "method_declaration":
			name := ctx.FieldText(member, "name", "name")
			if !isPublic(ctx, member) || isSkippedMagic(name) {
				continue
			}
			m := p.extractCallable(ctx, member)
			m.Name = name
			m.Namespace = decl.Namespace
			m.Imports = decl.Imports
			m.Static = hasChildOfType(member, "static_modifier")
			m.Abstract = hasChildOfType(member, "abstract_modifier") || decl.Kind == symbol.KindInterface
			decl.Methods = append(decl.Methods, m)
			if name == "__construct" {
				decl.Properties = append(decl.Properties, promotedProperties(ctx, member)...)
			}
		}
	}
}

func (p *PHPParser) extractCallable(ctx *ExtractionContext, node *sitter.Node) FunctionDecl {
	fn := FunctionDecl{
		Doc:        ctx.DocComment(node),
		ReturnType: ctx.FieldText(node, "return_type"),
		Location:   ctx.Location(node),
	}
	params := node.ChildByFieldName("parameters")
	if params == nil {
		params = childOfType(node, "formal_parameters")
	}
	for _, param := range namedChildren(params) {
		switch param.Type() {
		case "simple_parameter", "variadic_parameter", "property_promotion_parameter":
		default:
			continue
		}
		decl := ParamDecl{
			Name:     ctx.FieldText(param, "name", "variable_name"),
			Type:     ctx.FieldText(param, "type"),
			Variadic: param.Type() == "variadic_parameter",
			ByRef:    hasChildOfType(param, "reference_modifier"),
			Default:  ctx.FieldText(param, "default_value"),
		}
		decl.Optional = decl.Default != "" && !decl.Variadic
		fn.Params = append(fn.Params, decl)
	}
	return fn
}

// promotedProperties returns public constructor-promoted parameters.
func promotedProperties(ctx *ExtractionContext, method *sitter.Node) []PropertyDecl {
	params := method.ChildByFieldName("parameters")
	var out []PropertyDecl
	for _, param := range namedChildren(params) {
		if param.Type() != "property_promotion_parameter" {
			continue
		}
		if vis := ctx.ChildText(param, "visibility_modifier"); vis != "" && vis != "public" {
			continue
		}
		out = append(out, PropertyDecl{
			Name: ctx.FieldText(param, "name", "variable_name"),
			Type: ctx.FieldText(param, "type"),
		})
	}
	return out
}

func (p *PHPParser) traitNames(ctx *ExtractionContext, node *sitter.Node) []string {
	var out []string
	for _, child := range namedChildren(node) {
		switch child.Type() {
		case "name", "qualified_name":
			out = append(out, resolveClassName(ctx.Text(child), ctx.Namespace, ctx.Imports))
		}
	}
	return out
}

func isPublic(ctx *ExtractionContext, node *sitter.Node) bool {
	vis := ctx.ChildText(node, "visibility_modifier")
	return vis == "" || vis == "public"
}

func isSkippedMagic(name string) bool {
	return strings.HasPrefix(name, "__") && name != "__construct"
}

func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		out = append(out, node.NamedChild(i))
	}
	return out
}

func qualify(ns, name string) string {
	if ns == "" {
		return symbol.Normalize(name)
	}
	return fmt.Sprintf("%s%s%s", ns, symbol.Separator, name)
}

// resolveClassName applies PHP name resolution for a class reference
// written inside namespace ns with the given use directives.
func resolveClassName(name, ns, imports string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, symbol.Separator) {
		return symbol.Normalize(name)
	}
	first, rest, qualified := strings.Cut(name, symbol.Separator)
	for _, d := range alias.ParseDirectives(imports) {
		if d.Kind != "" || d.Alias != first {
			continue
		}
		if qualified {
			return d.Path + symbol.Separator + rest
		}
		return d.Path
	}
	return qualify(ns, name)
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
