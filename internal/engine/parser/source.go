package parser

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"refdoc/internal/core/errors"
	"refdoc/internal/shared/observability"
	"refdoc/internal/shared/util"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
)

// SourceConfig selects the PHP files a Source discovers.
type SourceConfig struct {
	Roots        []string // directories or doublestar patterns matching directories
	Include      []string // doublestar patterns relative to a root
	ExcludeDirs  []string // globs matched against directory base names
	ExcludeFiles []string // globs matched against file base names
	Workers      int
	CacheSize    int // parsed files kept between discoveries; negative disables
}

const defaultCacheSize = 4096

// Source walks the configured roots and parses every included PHP file.
type Source struct {
	cfg       SourceConfig
	parser    *PHPParser
	dirGlobs  []glob.Glob
	fileGlobs []glob.Glob
	cache     *lruCache[string, *File]
}

func NewSource(cfg SourceConfig, p *PHPParser) (*Source, error) {
	if p == nil {
		p = NewPHPParser()
	}
	if len(cfg.Include) == 0 {
		cfg.Include = []string{"**/*.php"}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("invalid include pattern %q", pattern))
		}
	}
	dirGlobs, err := compileGlobs(cfg.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs(cfg.ExcludeFiles)
	if err != nil {
		return nil, err
	}
	src := &Source{cfg: cfg, parser: p, dirGlobs: dirGlobs, fileGlobs: fileGlobs}
	if cfg.CacheSize >= 0 {
		size := cfg.CacheSize
		if size == 0 {
			size = defaultCacheSize
		}
		src.cache = newLRUCache[string, *File](size)
	}
	return src, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid exclude pattern %q", p))
		}
		out = append(out, g)
	}
	return out, nil
}

// Files lists every included file under the roots, sorted.
func (s *Source) Files(ctx context.Context) ([]string, error) {
	roots, err := s.expandRoots()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var files []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			base := filepath.Base(path)
			if d.IsDir() {
				if path != root && matchAny(s.dirGlobs, base) {
					return filepath.SkipDir
				}
				return nil
			}
			if matchAny(s.fileGlobs, base) {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			if !s.included(util.NormalizePatternPath(rel)) || seen[path] {
				return nil
			}
			seen[path] = true
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeIO, "walk source root"), errors.CtxPath, root)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Roots returns the existing directories the configured roots expand to.
func (s *Source) Roots() ([]string, error) {
	return s.expandRoots()
}

func (s *Source) expandRoots() ([]string, error) {
	var roots []string
	for _, root := range s.cfg.Roots {
		if !strings.ContainsAny(root, "*?[{") {
			info, err := os.Stat(root)
			if err != nil {
				return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "source root"), errors.CtxPath, root)
			}
			if !info.IsDir() {
				return nil, errors.AddContext(errors.New(errors.CodeValidationError, "source root is not a directory"), errors.CtxPath, root)
			}
			roots = append(roots, filepath.Clean(root))
			continue
		}
		matches, err := doublestar.FilepathGlob(root)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid root pattern %q", root))
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.IsDir() {
				roots = append(roots, m)
			}
		}
	}
	return roots, nil
}

func (s *Source) included(rel string) bool {
	for _, pattern := range s.cfg.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Discover parses every included file. Files that fail to read or parse
// are logged and skipped.
func (s *Source) Discover(ctx context.Context) ([]File, error) {
	paths, err := s.Files(ctx)
	if err != nil {
		return nil, err
	}

	workers := s.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	results := make([]*File, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.parseOne(ctx, paths[i])
			}
		}()
	}
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files := make([]File, 0, len(results))
	for _, f := range results {
		if f != nil {
			files = append(files, *f)
		}
	}
	return files, nil
}

func (s *Source) parseOne(ctx context.Context, path string) *File {
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to read source file", "path", path, "error", err)
		return nil
	}
	hash := contentHash(content)
	if s.cache != nil {
		if cached, ok := s.cache.Get(path); ok && cached.Hash == hash {
			observability.ParseCacheHits.Inc()
			return cached
		}
	}
	file, err := s.parser.ParseFile(ctx, path, content)
	if err != nil {
		slog.Warn("failed to parse source file", "path", path, "error", err)
		if s.cache != nil {
			s.cache.Evict(path)
		}
		return nil
	}
	if s.cache != nil {
		s.cache.Put(path, file)
	}
	return file
}
