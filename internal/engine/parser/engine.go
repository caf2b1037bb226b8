package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// NodeHandler processes a node for the extractor.
// Returns true if the handler has processed children and the walker should stop.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node) bool

// ExtractionContext carries shared state/helpers used while walking one file.
type ExtractionContext struct {
	Source []byte
	File   *File

	// namespace state for the declarations currently being walked
	Namespace string
	Imports   string

	ProcessedChildren bool // If true, the walker will skip this node's children
}

func (c *ExtractionContext) ResetProcessedChildren() {
	c.ProcessedChildren = false
}

// ExtractorEngine walks the syntax tree and dispatches node handlers by type.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

func (e *ExtractorEngine) Walk(ctx *ExtractionContext, node *sitter.Node) {
	if node == nil {
		return
	}

	ctx.ResetProcessedChildren()
	stop := false
	if handler, ok := e.handlers[node.Type()]; ok {
		stop = handler(ctx, node)
	}

	if !stop && !ctx.ProcessedChildren {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			e.Walk(ctx, node.NamedChild(i))
		}
	}
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Location(node *sitter.Node) Location {
	return Location{
		File:   c.File.Path,
		Line:   int(node.StartPoint().Row) + 1,
		Column: int(node.StartPoint().Column) + 1,
	}
}

// ChildText returns the text of the first direct child of the given type.
func (c *ExtractionContext) ChildText(node *sitter.Node, kind string) string {
	return c.Text(childOfType(node, kind))
}

// FieldText returns the text of a named field, falling back to the first
// child of one of kinds for grammar versions without the field.
func (c *ExtractionContext) FieldText(node *sitter.Node, field string, kinds ...string) string {
	if node == nil {
		return ""
	}
	if child := node.ChildByFieldName(field); child != nil {
		return c.Text(child)
	}
	for _, kind := range kinds {
		if child := childOfType(node, kind); child != nil {
			return c.Text(child)
		}
	}
	return ""
}

// DocComment returns the docblock immediately preceding node, if any.
func (c *ExtractionContext) DocComment(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	prev := node.PrevSibling()
	if prev == nil || prev.Type() != "comment" {
		return ""
	}
	text := c.Text(prev)
	if len(text) < 3 || text[:3] != "/**" {
		return ""
	}
	return text
}

func childOfType(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == kind {
			return child
		}
	}
	return nil
}

func hasChildOfType(node *sitter.Node, kind string) bool {
	return childOfType(node, kind) != nil
}
