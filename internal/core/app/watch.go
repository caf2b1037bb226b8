package app

import (
	"context"
	"log/slog"
	"path/filepath"

	"refdoc/internal/core/app/helpers"
	"refdoc/internal/core/config"
	"refdoc/internal/core/ports"
	"refdoc/internal/core/watcher"
	"refdoc/internal/shared/observability"
	"refdoc/internal/shared/util"
)

// Watch builds once and then rebuilds whenever a watched PHP file changes,
// until ctx is cancelled. Rebuilds are debounced by the file watcher and
// throttled to watch.max_rebuilds_per_second.
func (a *App) Watch(ctx context.Context, handler func(ports.WatchUpdate)) error {
	if handler == nil {
		handler = func(ports.WatchUpdate) {}
	}

	changes := make(chan []string, 16)
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.Config.Exclude.Dirs, a.Config.Exclude.Files, func(paths []string) {
		select {
		case changes <- paths:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	w.Ignore(a.Paths.OutputDir)
	if a.Config.DB.Enabled {
		w.Ignore(filepath.Dir(a.Paths.DBPath))
	}
	roots, err := a.watchRoots()
	if err != nil {
		return err
	}
	if err := w.Watch(roots); err != nil {
		return err
	}

	reloads := make(chan *config.Config, 1)
	if a.configPath != "" && a.Config.Watch.ReloadEnabled() {
		cw := config.NewWatcher(a.configPath, func(cfg *config.Config) {
			select {
			case reloads <- cfg:
			default:
			}
		})
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config reload disabled", "path", a.configPath, "error", err)
		} else {
			defer cw.Stop()
		}
	}

	limiter := util.NewLimiter(a.Config.Watch.MaxRebuildsPerSecond, 1)
	rebuild := func(changed []string) {
		if err := limiter.Wait(ctx, 1); err != nil {
			return
		}
		result, err := a.Build(ctx)
		outcome := "ok"
		if err != nil {
			outcome = "error"
			slog.Error("rebuild failed", "error", err)
		}
		observability.RebuildsTotal.WithLabelValues(outcome).Inc()
		handler(ports.WatchUpdate{Changed: changed, Result: result, Err: err})
	}

	slog.Info("watching for changes", "roots", roots)
	rebuild(nil)
	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-changes:
			slog.Info("sources changed", "files", len(changed))
			rebuild(changed)
		case cfg := <-reloads:
			if err := a.Reconfigure(cfg); err != nil {
				slog.Warn("ignoring reloaded configuration", "error", err)
				continue
			}
			w.SetDebounce(cfg.Watch.Debounce)
			limiter = util.NewLimiter(cfg.Watch.MaxRebuildsPerSecond, 1)
			rebuild([]string{a.configPath})
		}
	}
}

type rootLister interface {
	Roots() ([]string, error)
}

func (a *App) watchRoots() ([]string, error) {
	if lister, ok := a.source.(rootLister); ok {
		roots, err := lister.Roots()
		if err != nil {
			return nil, err
		}
		return helpers.UniqueScanRoots(roots), nil
	}
	return helpers.UniqueScanRoots(a.Paths.SourceRoots), nil
}
