package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	ProjectRoot string
	SourceRoots []string
	OutputDir   string
	DBPath      string
}

// ResolvePaths makes every configured location absolute against baseDir,
// normally the directory holding the config file.
func ResolvePaths(cfg *Config, baseDir string) (ResolvedPaths, error) {
	if strings.TrimSpace(baseDir) == "" {
		return ResolvedPaths{}, fmt.Errorf("base directory must not be empty")
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return ResolvedPaths{}, fmt.Errorf("resolve base directory %q: %w", baseDir, err)
	}

	roots := make([]string, 0, len(cfg.Source.Roots))
	for _, root := range cfg.Source.Roots {
		roots = append(roots, ResolveRelative(base, root))
	}
	return ResolvedPaths{
		ProjectRoot: filepath.Clean(base),
		SourceRoots: roots,
		OutputDir:   ResolveRelative(base, cfg.Output.Dir),
		DBPath:      ResolveRelative(base, cfg.DB.Path),
	}, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// DetectProjectRoot walks up from each candidate until it finds a directory
// holding a project marker. It falls back to the working directory.
func DetectProjectRoot(candidates []string) (string, error) {
	markers := []string{
		DefaultFile,
		"composer.json",
		".git",
	}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		root := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			root = filepath.Dir(abs)
		}

		for {
			for _, marker := range markers {
				if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
					return filepath.Clean(root), nil
				}
			}
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(cwd), nil
}
