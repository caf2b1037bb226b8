package alias

import (
	"sort"
	"sync"
)

// Table maps short names visible to one symbol onto fully qualified names.
// Lookups that miss return the name unchanged.
type Table struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewTable() *Table {
	return &Table{entries: make(map[string]string)}
}

// Add registers an explicit alias, replacing any previous mapping for key.
func (t *Table) Add(key, fqn string) {
	if key == "" || fqn == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[key] = fqn
}

// AddDefault registers key only when no mapping exists yet.
// It reports whether the mapping was added.
func (t *Table) AddDefault(key, fqn string) bool {
	if key == "" || fqn == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[key]; exists {
		return false
	}
	t.entries[key] = fqn
	return true
}

func (t *Table) Lookup(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	fqn, ok := t.entries[name]
	return fqn, ok
}

// Resolve returns the mapping for name, or name itself on a miss.
func (t *Table) Resolve(name string) string {
	if fqn, ok := t.Lookup(name); ok {
		return fqn
	}
	return name
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.entries))
	for key := range t.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
