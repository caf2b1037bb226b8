package ports

import (
	"context"
	"time"

	"refdoc/internal/data/manifest"
	"refdoc/internal/engine/parser"
)

// SymbolSource discovers the declarations of a project.
type SymbolSource interface {
	Discover(ctx context.Context) ([]parser.File, error)
}

// PageStore remembers generated pages between builds.
type PageStore interface {
	BeginRun() string
	Unchanged(path, hash string) (bool, error)
	Record(runID string, e manifest.Entry) error
	Stale(runID string) ([]manifest.Entry, error)
	Forget(paths []string) error
}

// BuildResult summarizes one completed build.
type BuildResult struct {
	RunID        string
	Files        int
	Symbols      int
	Documents    int
	Ignored      int
	PagesWritten int
	PagesSkipped int
	PagesRemoved int
	Unlinkable   int
	OutputDir    string
	Duration     time.Duration
	Warnings     []string
}

// WatchUpdate is emitted after every watch-triggered rebuild.
type WatchUpdate struct {
	Changed []string
	Result  BuildResult
	Err     error
}

// BuildService is the driving port used by the CLI.
type BuildService interface {
	Build(ctx context.Context) (BuildResult, error)
	Watch(ctx context.Context, handler func(WatchUpdate)) error
	ResolveType(ctx context.Context, owner, text string) (ResolvedType, error)
	LinkPath(ctx context.Context, from, to string) (string, bool, error)
}

// ResolvedType is the outcome of resolving one type expression in the
// context of a symbol.
type ResolvedType struct {
	Owner      string
	Input      string
	Text       string
	References []string
	Linkable   []string
}
