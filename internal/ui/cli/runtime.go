package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	coreapp "refdoc/internal/core/app"
	"refdoc/internal/core/config"
	"refdoc/internal/core/ports"
	"refdoc/internal/shared/observability"
)

// runtime is everything a command needs: resolved configuration, the build
// service and its cleanup hooks.
type runtime struct {
	cfg        *config.Config
	paths      config.ResolvedPaths
	configPath string
	service    ports.BuildService
	health     *coreapp.HealthService

	closers []func(context.Context) error
}

func openRuntime(ctx context.Context, opts *cliOptions, factory buildFactory) (*runtime, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("detect working directory: %w", err)
	}

	cfg, cfgPath, root, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		return nil, err
	}
	paths, err := config.ResolvePaths(cfg, root)
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	if errs := config.ValidatePaths(paths); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	rt := &runtime{cfg: cfg, paths: paths, configPath: cfgPath}
	if cfg.Observability.EnableTracing {
		shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, versionString)
		if err != nil {
			slog.Warn("tracing disabled", "endpoint", cfg.Observability.OTLPEndpoint, "error", err)
		} else {
			rt.closers = append(rt.closers, shutdown)
		}
	}

	app, err := initializeBuild(cfg, paths, cfgPath, factory)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	rt.service = app.BuildService()
	rt.health = coreapp.NewHealthService(app)
	rt.closers = append(rt.closers, app.Close)

	slog.Debug("runtime ready",
		"project_root", paths.ProjectRoot,
		"config", cfgPath,
		"output", paths.OutputDir,
		"roots", strings.Join(paths.SourceRoots, ","),
	)
	return rt, nil
}

// Close runs cleanup hooks in reverse order.
func (r *runtime) Close(ctx context.Context) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			slog.Warn("shutdown step failed", "error", err)
		}
	}
	r.closers = nil
}

// loadConfig reads path when given. Otherwise it looks for refdoc.toml in the
// detected project root and falls back to defaults. Environment overrides
// and composer.json metadata are applied last. The returned root is the
// base for relative paths.
func loadConfig(path, cwd string) (*config.Config, string, string, error) {
	var (
		cfg  *config.Config
		root string
		err  error
	)
	if strings.TrimSpace(path) != "" {
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return nil, "", "", fmt.Errorf("resolve config path: %w", absErr)
		}
		path = abs
		cfg, err = config.Load(path)
		if err != nil {
			return nil, "", "", fmt.Errorf("load config %s: %w", path, err)
		}
		root = filepath.Dir(path)
	} else {
		root, err = config.DetectProjectRoot([]string{cwd})
		if err != nil {
			return nil, "", "", fmt.Errorf("detect project root: %w", err)
		}
		candidate := filepath.Join(root, config.DefaultFile)
		cfg, err = config.Load(candidate)
		switch {
		case err == nil:
			path = candidate
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("no config file found, using defaults", "root", root)
			cfg = config.Default()
		default:
			return nil, "", "", fmt.Errorf("load config %s: %w", candidate, err)
		}
	}

	config.ApplyEnvOverrides(cfg)
	if err := config.ApplyComposer(cfg, root); err != nil {
		slog.Warn("ignoring composer.json", "root", root, "error", err)
	}
	return cfg, path, root, nil
}

func configureLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
