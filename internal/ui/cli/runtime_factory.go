package cli

import (
	"fmt"

	coreapp "refdoc/internal/core/app"
	"refdoc/internal/core/config"
)

type buildFactory interface {
	New(cfg *config.Config, paths config.ResolvedPaths, configPath string) (*coreapp.App, error)
}

type coreBuildFactory struct{}

func (coreBuildFactory) New(cfg *config.Config, paths config.ResolvedPaths, configPath string) (*coreapp.App, error) {
	var opts []coreapp.Option
	if configPath != "" {
		opts = append(opts, coreapp.WithConfigPath(configPath))
	}
	return coreapp.New(cfg, paths, opts...)
}

func initializeBuild(cfg *config.Config, paths config.ResolvedPaths, configPath string, factory buildFactory) (*coreapp.App, error) {
	if factory == nil {
		return nil, fmt.Errorf("build factory is required")
	}
	return factory.New(cfg, paths, configPath)
}
