// Package app wires discovery, resolution and page assembly into builds.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"refdoc/internal/core/config"
	"refdoc/internal/core/errors"
	"refdoc/internal/core/ports"
	"refdoc/internal/data/manifest"
	"refdoc/internal/engine/parser"
	"refdoc/internal/engine/symbol"
)

type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths

	source     ports.SymbolSource
	store      ports.PageStore
	closeStore func() error
	symbols    *symbol.Filter
	configPath string

	buildMu sync.Mutex
	stateMu sync.RWMutex
	state   *buildState
}

type Option func(*App)

// WithSource replaces the PHP source walker, mainly for tests.
func WithSource(src ports.SymbolSource) Option {
	return func(a *App) { a.source = src }
}

// WithPageStore replaces the SQLite manifest.
func WithPageStore(store ports.PageStore) Option {
	return func(a *App) { a.store = store }
}

// WithConfigPath lets watch mode reload the configuration from path.
func WithConfigPath(path string) Option {
	return func(a *App) { a.configPath = path }
}

func New(cfg *config.Config, paths config.ResolvedPaths, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}
	a := &App{Config: cfg, Paths: paths}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.configure(cfg, paths); err != nil {
		return nil, err
	}

	if a.store == nil && cfg.DB.Enabled {
		store, err := manifest.Open(paths.DBPath)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeIO, "open page manifest"), errors.CtxPath, paths.DBPath)
		}
		a.store = store
		a.closeStore = store.Close
	}
	return a, nil
}

// configure derives the source and symbol filter from cfg and paths. An
// injected source is kept as is. Nothing on a is touched unless both succeed.
func (a *App) configure(cfg *config.Config, paths config.ResolvedPaths) error {
	filter, err := symbol.NewFilter(cfg.Exclude.Symbols)
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "exclude.symbols")
	}

	src := a.source
	if _, walker := a.source.(*parser.Source); a.source == nil || walker {
		next, err := parser.NewSource(parser.SourceConfig{
			Roots:        paths.SourceRoots,
			Include:      cfg.Source.Include,
			ExcludeDirs:  cfg.Exclude.Dirs,
			ExcludeFiles: cfg.Exclude.Files,
			Workers:      cfg.Build.Workers,
			CacheSize:    cfg.Build.ParseCache,
		}, parser.NewPHPParser())
		if err != nil {
			return err
		}
		src = next
	}

	a.symbols = filter
	a.source = src
	a.Paths = paths
	return nil
}

// Reconfigure swaps in a reloaded configuration for subsequent builds. On
// error the previous configuration stays in effect.
func (a *App) Reconfigure(cfg *config.Config) error {
	a.buildMu.Lock()
	defer a.buildMu.Unlock()

	if err := config.ApplyComposer(cfg, a.Paths.ProjectRoot); err != nil {
		slog.Warn("ignoring composer.json", "root", a.Paths.ProjectRoot, "error", err)
	}
	paths, err := config.ResolvePaths(cfg, a.Paths.ProjectRoot)
	if err != nil {
		return err
	}
	if err := a.configure(cfg, paths); err != nil {
		return err
	}
	a.Config = cfg
	return nil
}

func (a *App) Close(ctx context.Context) error {
	if a.closeStore == nil {
		return nil
	}
	if err := a.closeStore(); err != nil {
		return fmt.Errorf("close page manifest: %w", err)
	}
	return nil
}
