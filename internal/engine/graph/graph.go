package graph

import (
	"sort"
	"sync"

	"refdoc/internal/engine/symbol"
	"refdoc/internal/shared/observability"
)

// Graph is the registry of every documented symbol. It is populated during
// discovery and only read while pages are linked; queries for names that
// were never registered report them as unknown.
type Graph struct {
	mu sync.RWMutex

	known  map[string]symbol.Kind // fqn -> kind
	titles map[string]string      // fqn -> short title
}

func NewGraph() *Graph {
	return &Graph{
		known:  make(map[string]symbol.Kind),
		titles: make(map[string]string),
	}
}

// Register adds sym to the graph. Registering the same name again
// overwrites its title.
func (g *Graph) Register(sym *symbol.Symbol, title string) {
	if sym == nil || sym.Name() == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.known[sym.Name()] = sym.Kind()
	g.titles[sym.Name()] = title
	observability.GraphSymbols.Set(float64(len(g.known)))
}

func (g *Graph) IsKnown(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.known[symbol.Normalize(name)]
	return ok
}

func (g *Graph) TitleOf(name string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	title, ok := g.titles[symbol.Normalize(name)]
	return title, ok
}

func (g *Graph) KindOf(name string) (symbol.Kind, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	kind, ok := g.known[symbol.Normalize(name)]
	return kind, ok
}

// Names returns every registered name, sorted.
func (g *Graph) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.known))
	for name := range g.known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.known)
}

// LinkPath returns the relative page path from the page of from to the page
// of to. The second result is false when to is unlinkable: either unknown or
// declared in the global namespace.
func (g *Graph) LinkPath(from, to string) (string, bool) {
	if !g.IsKnown(to) {
		return "", false
	}
	return RelativePath(from, to)
}
