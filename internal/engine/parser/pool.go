package parser

import (
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
)

// ParserPool recycles tree-sitter parser instances to avoid the per-file
// allocation overhead of sitter.NewParser().
//
// Usage:
//
//	sp := pool.Get()
//	defer pool.Put(sp)
//	tree, err := sp.ParseCtx(ctx, nil, source)
//
// Concurrency: safe for use by multiple goroutines simultaneously.
type ParserPool struct {
	lang *sitter.Language
	pool sync.Pool

	leases   map[*sitter.Parser]time.Time
	leasesMu sync.Mutex
}

func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{
		lang:   lang,
		leases: make(map[*sitter.Parser]time.Time),
	}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

// Get retrieves a parser configured for the pool's language.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	sp.SetLanguage(p.lang)

	p.leasesMu.Lock()
	p.leases[sp] = time.Now()
	p.leasesMu.Unlock()

	return sp
}

// Put resets sp and returns it to the pool. Callers must not use sp after
// calling Put.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}

	p.leasesMu.Lock()
	delete(p.leases, sp)
	p.leasesMu.Unlock()

	sp.Reset()
	p.pool.Put(sp)
}

// Stats returns the number of currently leased parsers.
func (p *ParserPool) Stats() int {
	p.leasesMu.Lock()
	defer p.leasesMu.Unlock()
	return len(p.leases)
}
