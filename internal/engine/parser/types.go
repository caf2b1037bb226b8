package parser

import (
	"time"

	"refdoc/internal/engine/symbol"
)

// File is everything extracted from one PHP source file.
type File struct {
	Path      string
	Hash      string
	Source    string
	Classes   []ClassDecl
	Functions []FunctionDecl
	ParsedAt  time.Time
}

// ClassDecl covers classes, interfaces and traits.
type ClassDecl struct {
	Name       string // fully qualified
	Kind       symbol.Kind
	Abstract   bool
	Final      bool
	Namespace  string
	Imports    string   // raw use directives in scope of the declaration
	Doc        string   // raw docblock, empty when absent
	Traits     []string // fully qualified names of used traits
	Properties []PropertyDecl
	Constants  []ConstantDecl
	Methods    []FunctionDecl
	Location   Location
}

// FunctionDecl is a top-level function or a method. Name is fully
// qualified for functions and the bare method name otherwise.
type FunctionDecl struct {
	Name       string
	Namespace  string
	Imports    string
	Doc        string
	Params     []ParamDecl
	ReturnType string
	Static     bool
	Abstract   bool
	Location   Location
}

type ParamDecl struct {
	Name     string // with the leading $
	Type     string
	Variadic bool
	ByRef    bool
	Optional bool
	Default  string
}

type PropertyDecl struct {
	Name string // with the leading $
	Type string
	Doc  string
}

type ConstantDecl struct {
	Name  string
	Value string
	Doc   string
}

type Location struct {
	File   string
	Line   int
	Column int
}

// Symbol builds the registry entry for a class-like declaration.
func (c ClassDecl) Symbol() *symbol.Symbol {
	return symbol.New(c.Name, c.Kind,
		symbol.WithAbstract(c.Abstract),
		symbol.WithLocation(c.Location.File, c.Location.Line))
}

// Symbol builds the registry entry for a top-level function.
func (f FunctionDecl) Symbol() *symbol.Symbol {
	return symbol.New(f.Name, symbol.KindFunction,
		symbol.WithLocation(f.Location.File, f.Location.Line))
}
