package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"refdoc/internal/core/errors"
	"refdoc/internal/core/ports"
	"refdoc/internal/data/manifest"
	"refdoc/internal/shared/observability"
	"refdoc/internal/shared/util"
	"refdoc/internal/ui/report"
)

// write stores pages below the output directory. With a page store,
// unchanged pages are left alone and pages of vanished symbols are removed.
func (a *App) write(ctx context.Context, pages []report.Page, result *ports.BuildResult) error {
	_, span := observability.Tracer.Start(ctx, "phase.write")
	defer span.End()
	start := time.Now()
	defer func() { observability.PhaseDuration.WithLabelValues("write").Observe(time.Since(start).Seconds()) }()

	runID := ""
	if a.store != nil {
		runID = a.store.BeginRun()
	}
	result.RunID = runID

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		written, err := a.writePage(runID, page)
		if err != nil {
			return err
		}
		if written {
			result.PagesWritten++
			observability.PagesWritten.Inc()
		} else {
			result.PagesSkipped++
			observability.PagesSkipped.Inc()
		}
	}

	if a.store == nil {
		return nil
	}
	removed, err := a.prune(runID)
	result.PagesRemoved = removed
	return err
}

func (a *App) writePage(runID string, page report.Page) (bool, error) {
	target := filepath.Join(a.Paths.OutputDir, filepath.FromSlash(page.Path))
	hash := manifest.Hash(page.Content)

	if a.store != nil {
		same, err := a.store.Unchanged(page.Path, hash)
		if err != nil {
			return false, errors.AddContext(errors.Wrap(err, errors.CodeIO, "read page manifest"), errors.CtxPath, page.Path)
		}
		if same {
			if _, statErr := os.Stat(target); statErr == nil {
				return false, a.record(runID, page, hash)
			}
		}
	}

	if err := util.WriteStringWithDirs(target, page.Content, 0o644); err != nil {
		return false, errors.AddContext(errors.Wrap(err, errors.CodeIO, "write page"), errors.CtxPath, target)
	}
	if a.store != nil {
		if err := a.record(runID, page, hash); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (a *App) record(runID string, page report.Page, hash string) error {
	err := a.store.Record(runID, manifest.Entry{Path: page.Path, Symbol: page.Symbol, Hash: hash})
	if err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeIO, "record page"), errors.CtxPath, page.Path)
	}
	return nil
}

// prune deletes pages recorded by earlier runs that this run did not produce.
func (a *App) prune(runID string) (int, error) {
	stale, err := a.store.Stale(runID)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeIO, "list stale pages")
	}
	paths := make([]string, 0, len(stale))
	for _, entry := range stale {
		target := filepath.Join(a.Paths.OutputDir, filepath.FromSlash(entry.Path))
		if err := util.RemoveWithEmptyParents(a.Paths.OutputDir, target); err != nil {
			slog.Warn("failed to remove stale page", "path", target, "error", err)
			continue
		}
		slog.Debug("removed stale page", "path", target, "symbol", entry.Symbol)
		observability.PagesRemoved.Inc()
		paths = append(paths, entry.Path)
	}
	if err := a.store.Forget(paths); err != nil {
		return len(paths), errors.Wrap(err, errors.CodeIO, "forget stale pages")
	}
	return len(paths), nil
}
