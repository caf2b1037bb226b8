package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"refdoc/internal/core/config/helpers"
	"refdoc/internal/engine/symbol"

	"github.com/BurntSushi/toml"
)

// DefaultFile is looked up in the project root when no config path is given.
const DefaultFile = "refdoc.toml"

type Config struct {
	Version       int           `toml:"version"`
	Project       Project       `toml:"project"`
	Source        Source        `toml:"source"`
	Exclude       Exclude       `toml:"exclude"`
	Output        Output        `toml:"output"`
	Build         Build         `toml:"build"`
	DB            Database      `toml:"db"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Project struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Namespace   string   `toml:"namespace"` // empty: shortest discovered namespace
	Authors     []string `toml:"authors"`
	Image       string   `toml:"image"`
}

type Source struct {
	Roots   []string `toml:"roots"`
	Include []string `toml:"include"`
}

type Exclude struct {
	Dirs    []string `toml:"dirs"`
	Files   []string `toml:"files"`
	Symbols []string `toml:"symbols"` // FQN globs, e.g. "*\\Internal\\*"
}

type Output struct {
	Dir              string            `toml:"dir"`
	FrontMatter      map[string]string `toml:"front_matter"`
	IndexFrontMatter map[string]string `toml:"index_front_matter"`
	HTMLDescriptions *bool             `toml:"html_descriptions"`
}

type Build struct {
	Workers    int `toml:"workers"`
	ParseCache int `toml:"parse_cache"` // parsed files kept for rebuilds; 0 uses the default, negative disables
}

type Database struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Watch struct {
	Debounce             time.Duration `toml:"debounce"`
	MaxRebuildsPerSecond float64       `toml:"max_rebuilds_per_second"`
	ReloadConfig         *bool         `toml:"reload_config"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Address       string `toml:"address"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
}

// Load reads, defaults and validates the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if len(cfg.Source.Roots) == 0 {
		cfg.Source.Roots = []string{"src"}
	}
	if len(cfg.Source.Include) == 0 {
		cfg.Source.Include = []string{"**/*.php"}
	}
	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{"vendor", ".git"}
	}
	if strings.TrimSpace(cfg.Output.Dir) == "" {
		cfg.Output.Dir = "docs"
	}
	if cfg.Build.Workers <= 0 {
		cfg.Build.Workers = 1
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = ".refdoc/manifest.db"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxRebuildsPerSecond == 0 {
		cfg.Watch.MaxRebuildsPerSecond = 1.0
	}
	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = "127.0.0.1:9464"
	}
}

// HTMLEnabled reports whether HTML in descriptions is converted; on by default.
func (o Output) HTMLEnabled() bool {
	if o.HTMLDescriptions == nil {
		return true
	}
	return *o.HTMLDescriptions
}

func (w Watch) ReloadEnabled() bool {
	if w.ReloadConfig == nil {
		return true
	}
	return *w.ReloadConfig
}

func validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateVersion,
		validateSource,
		validateExclude,
		validateOutput,
		validateBuild,
		validateWatch,
		validateObservability,
	} {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateSource(cfg *Config) error {
	for i, root := range cfg.Source.Roots {
		if strings.TrimSpace(root) == "" {
			return fmt.Errorf("source.roots[%d] must not be empty", i)
		}
	}
	for i, pattern := range cfg.Source.Include {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("source.include[%d] must not be empty", i)
		}
	}
	return nil
}

func validateExclude(cfg *Config) error {
	if _, err := symbol.NewFilter(cfg.Exclude.Symbols); err != nil {
		return fmt.Errorf("exclude.symbols: %w", err)
	}
	for i, d := range cfg.Exclude.Dirs {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("exclude.dirs[%d] must not be empty", i)
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	for key := range cfg.Output.FrontMatter {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("output.front_matter keys must not be empty")
		}
	}
	for key := range cfg.Output.IndexFrontMatter {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("output.index_front_matter keys must not be empty")
		}
	}
	return nil
}

func validateBuild(cfg *Config) error {
	if cfg.Build.Workers > 256 {
		return fmt.Errorf("build.workers must be <= 256, got %d", cfg.Build.Workers)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	if cfg.Watch.MaxRebuildsPerSecond < 0 {
		return fmt.Errorf("watch.max_rebuilds_per_second must not be negative")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if cfg.Observability.EnableTracing && strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
		return fmt.Errorf("observability.otlp_endpoint is required when enable_tracing=true")
	}
	return nil
}

// ValidatePaths checks resolved locations against the filesystem.
func ValidatePaths(paths ResolvedPaths) []error {
	var errs []error
	for i, root := range paths.SourceRoots {
		if helpers.HasWildcard(root) {
			continue
		}
		stat, err := os.Stat(root)
		if os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("source.roots[%d] %q does not exist", i, root))
		} else if err == nil && !stat.IsDir() {
			errs = append(errs, fmt.Errorf("source.roots[%d] %q is not a directory", i, root))
		}
		if helpers.IsPathOverlap(root, paths.OutputDir) {
			errs = append(errs, fmt.Errorf("output.dir %q overlaps source root %q", paths.OutputDir, root))
		}
	}
	if stat, err := os.Stat(paths.OutputDir); err == nil && !stat.IsDir() {
		errs = append(errs, fmt.Errorf("output.dir %q is not a directory", paths.OutputDir))
	}
	return errs
}
