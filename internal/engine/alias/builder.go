package alias

import (
	"log/slog"
	"sort"

	"refdoc/internal/engine/symbol"
)

// Unit is the raw material for one symbol's alias table.
type Unit struct {
	Name   string   // fully qualified symbol name
	Source string   // raw source or import-directive text; empty when unavailable
	Traits []string // fully qualified names of structurally included traits
}

// Builder turns units into alias tables. Tables are written during the
// discovery phase and treated as read-only afterwards.
type Builder struct {
	units  map[string]Unit
	tables map[string]*Table
}

func NewBuilder(units []Unit) *Builder {
	b := &Builder{
		units:  make(map[string]Unit, len(units)),
		tables: make(map[string]*Table, len(units)),
	}
	for _, u := range units {
		name := symbol.Normalize(u.Name)
		if name == "" {
			continue
		}
		u.Name = name
		b.units[name] = u
	}
	return b
}

// BuildAll builds one table per unit and merges sibling defaults.
func (b *Builder) BuildAll() map[string]*Table {
	names := make([]string, 0, len(b.units))
	for name := range b.units {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.Build(name)
	}
	MergeSiblingDefaults(b.tables)
	return b.tables
}

// Build returns the table for name, building it on first use.
// Unknown names get an empty table.
func (b *Builder) Build(name string) *Table {
	name = symbol.Normalize(name)
	if table, ok := b.tables[name]; ok {
		return table
	}
	table := NewTable()
	b.tables[name] = table
	b.addUnit(table, name, make(map[string]bool), true)
	return table
}

// addUnit adds the directives of name and, recursively, of its traits. Only
// the owner's directives are explicit; trait imports never replace them.
func (b *Builder) addUnit(table *Table, name string, visited map[string]bool, owner bool) {
	if visited[name] {
		return
	}
	visited[name] = true

	unit, ok := b.units[name]
	if !ok {
		slog.Debug("no source available for alias table", "symbol", name)
		return
	}
	add := table.Add
	if !owner {
		add = func(key, fqn string) { table.AddDefault(key, fqn) }
	}
	for _, d := range ParseDirectives(unit.Source) {
		add(d.Alias, d.Path)
		add(symbol.Separator+d.Alias, d.Path)
	}
	for _, trait := range unit.Traits {
		b.addUnit(table, symbol.Normalize(trait), visited, false)
	}
}

// MergeSiblingDefaults lets symbols of one namespace reference each other by
// basename. Explicit aliases already present always win.
func MergeSiblingDefaults(tables map[string]*Table) {
	byNamespace := make(map[string][]string)
	for name := range tables {
		ns := symbol.Namespace(name)
		byNamespace[ns] = append(byNamespace[ns], name)
	}
	for _, members := range byNamespace {
		sort.Strings(members)
		for _, owner := range members {
			table := tables[owner]
			for _, sibling := range members {
				base := symbol.Basename(sibling)
				table.AddDefault(base, sibling)
				table.AddDefault(symbol.Separator+base, sibling)
			}
		}
	}
}
