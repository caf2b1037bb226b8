package parser

import (
	"context"
	"sync"
	"testing"

	"github.com/smacker/go-tree-sitter/php"
)

func TestParserPool_GetPut(t *testing.T) {
	pool := NewParserPool(php.GetLanguage())

	sp := pool.Get()
	if sp == nil {
		t.Fatal("expected non-nil parser from pool")
	}
	if pool.Stats() != 1 {
		t.Errorf("expected one leased parser, got %d", pool.Stats())
	}

	pool.Put(sp)
	if pool.Stats() != 0 {
		t.Errorf("expected no leased parsers after Put, got %d", pool.Stats())
	}
}

func TestParserPool_PutNil(t *testing.T) {
	pool := NewParserPool(php.GetLanguage())

	// Put(nil) must be a no-op.
	pool.Put(nil)
}

func TestParserPool_ParsesValidPHP(t *testing.T) {
	pool := NewParserPool(php.GetLanguage())

	sp := pool.Get()
	defer pool.Put(sp)

	src := []byte("<?php\nfunction main() {}\n")
	tree, err := sp.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		t.Fatalf("expected parse tree for valid PHP source, got err=%v", err)
	}
	defer tree.Close()

	if root := tree.RootNode(); root.HasError() {
		t.Fatalf("expected error-free root node")
	}
}

func TestParserPool_ConcurrentAccess(t *testing.T) {
	pool := NewParserPool(php.GetLanguage())

	const goroutines = 20
	const iters = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)

	src := []byte("<?php\nfunction run() {}\n")

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iters; j++ {
				sp := pool.Get()
				tree, err := sp.ParseCtx(context.Background(), nil, src)
				if err != nil || tree == nil {
					t.Errorf("expected non-nil parse tree")
				} else {
					tree.Close()
				}
				pool.Put(sp)
			}
		}()
	}

	wg.Wait()
}
