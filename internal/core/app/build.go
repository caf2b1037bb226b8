package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"refdoc/internal/core/app/helpers"
	"refdoc/internal/core/errors"
	"refdoc/internal/core/ports"
	"refdoc/internal/engine/alias"
	"refdoc/internal/engine/doc"
	"refdoc/internal/engine/graph"
	"refdoc/internal/engine/parser"
	"refdoc/internal/engine/resolver"
	"refdoc/internal/engine/symbol"
	"refdoc/internal/shared/observability"
	"refdoc/internal/shared/util"
	"refdoc/internal/ui/report"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// buildState is everything phase 1 produces. It is read-only once built.
type buildState struct {
	files     int
	symbols   int
	namespace string
	resolver  *resolver.Resolver
	graph     *graph.Graph
	docs      []*doc.Document
	ignored   int
	warnings  []string
}

// Build runs both phases and writes the pages.
func (a *App) Build(ctx context.Context) (ports.BuildResult, error) {
	a.buildMu.Lock()
	defer a.buildMu.Unlock()

	ctx, span := observability.Tracer.Start(ctx, "app.Build")
	defer span.End()
	start := time.Now()

	state, err := a.collect(ctx)
	if err != nil {
		return ports.BuildResult{}, err
	}

	assembler := report.NewAssembler(state.graph, a.assemblerOptions())
	pages, err := a.assemble(ctx, assembler, state.docs)
	if err != nil {
		return ports.BuildResult{}, err
	}

	result := ports.BuildResult{
		Files:     state.files,
		Symbols:   state.symbols,
		Documents: len(state.docs),
		Ignored:   state.ignored,
		OutputDir: a.Paths.OutputDir,
		Warnings:  state.warnings,
	}
	if err := a.write(ctx, pages, &result); err != nil {
		return ports.BuildResult{}, err
	}
	result.Unlinkable = assembler.Unlinkable()
	result.Duration = time.Since(start)

	a.stateMu.Lock()
	a.state = state
	a.stateMu.Unlock()

	span.SetAttributes(
		attribute.Int("refdoc.documents", result.Documents),
		attribute.Int("refdoc.pages_written", result.PagesWritten),
	)
	slog.Info("build finished",
		"documents", result.Documents,
		"ignored", result.Ignored,
		"written", result.PagesWritten,
		"skipped", result.PagesSkipped,
		"removed", result.PagesRemoved,
		"duration", result.Duration,
		"heap_mb", util.HeapAllocMB(),
	)
	return result, nil
}

// collect is phase 1: discovery, alias tables, documents and graph
// registration. No link is computed here since the graph is incomplete
// until it returns.
func (a *App) collect(ctx context.Context) (*buildState, error) {
	files, err := a.phase(ctx, "discover", func(ctx context.Context) ([]parser.File, error) {
		files, err := a.source.Discover(ctx)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxOperation, "discover")
		}
		return files, nil
	})
	if err != nil {
		return nil, err
	}

	state := &buildState{files: len(files), graph: graph.NewGraph()}
	classes, functions := a.declarations(files, state)

	_, span := observability.Tracer.Start(ctx, "phase.aliases")
	tableStart := time.Now()
	units := make([]alias.Unit, 0, len(classes)+len(functions))
	for _, c := range classes {
		units = append(units, alias.Unit{Name: c.Name, Source: c.Imports, Traits: c.Traits})
	}
	for _, f := range functions {
		units = append(units, alias.Unit{Name: f.Name, Source: f.Imports})
	}
	state.resolver = resolver.NewResolver(alias.NewBuilder(units).BuildAll())
	observability.PhaseDuration.WithLabelValues("aliases").Observe(time.Since(tableStart).Seconds())
	span.End()

	_, span = observability.Tracer.Start(ctx, "phase.documents")
	docStart := time.Now()
	builder := doc.NewBuilder(state.resolver, a.Config.Project.Authors)
	add := func(d *doc.Document) {
		if d.Ignore {
			state.ignored++
			observability.DocumentsIgnored.Inc()
			return
		}
		state.graph.Register(d.Symbol, d.Title)
		state.docs = append(state.docs, d)
	}
	for _, c := range classes {
		add(builder.Class(c))
	}
	for _, f := range functions {
		add(builder.Function(f))
	}
	sort.Slice(state.docs, func(i, j int) bool { return state.docs[i].Name < state.docs[j].Name })
	observability.PhaseDuration.WithLabelValues("documents").Observe(time.Since(docStart).Seconds())
	span.SetAttributes(attribute.Int("refdoc.documents", len(state.docs)))
	span.End()

	return state, nil
}

// declarations flattens files into class-like and function declarations,
// dropping duplicates and anything outside the project namespace or matched
// by exclude.symbols.
func (a *App) declarations(files []parser.File, state *buildState) ([]parser.ClassDecl, []parser.FunctionDecl) {
	var names []string
	for _, f := range files {
		for _, c := range f.Classes {
			names = append(names, c.Name)
		}
		for _, fn := range f.Functions {
			names = append(names, fn.Name)
		}
	}
	state.namespace = symbol.Normalize(a.Config.Project.Namespace)
	if state.namespace == "" {
		state.namespace = helpers.CommonNamespace(names)
		slog.Debug("derived project namespace", "namespace", state.namespace)
	}

	seen := make(map[string]string)
	keep := func(name, file string) bool {
		name = symbol.Normalize(name)
		if !inNamespace(name, state.namespace) || a.symbols.Match(name) {
			return false
		}
		if prev, dup := seen[name]; dup {
			msg := fmt.Sprintf("duplicate declaration of %s in %s, keeping %s", name, file, prev)
			slog.Warn("duplicate declaration", "symbol", name, "path", file, "kept", prev)
			state.warnings = append(state.warnings, msg)
			return false
		}
		seen[name] = file
		return true
	}

	var (
		classes   []parser.ClassDecl
		functions []parser.FunctionDecl
	)
	for _, f := range files {
		for _, c := range f.Classes {
			if keep(c.Name, f.Path) {
				classes = append(classes, c)
				observability.SymbolsDiscovered.WithLabelValues(c.Kind.String()).Inc()
			}
		}
		for _, fn := range f.Functions {
			if keep(fn.Name, f.Path) {
				functions = append(functions, fn)
				observability.SymbolsDiscovered.WithLabelValues(symbol.KindFunction.String()).Inc()
			}
		}
	}
	state.symbols = len(classes) + len(functions)
	return classes, functions
}

func inNamespace(name, namespace string) bool {
	return namespace == "" || strings.HasPrefix(name, namespace+symbol.Separator)
}

// assemble is phase 2: every page is rendered against the complete graph.
// Pages are independent, so they are spread over the configured workers.
func (a *App) assemble(ctx context.Context, assembler *report.Assembler, docs []*doc.Document) ([]report.Page, error) {
	ctx, span := observability.Tracer.Start(ctx, "phase.assemble", trace.WithAttributes(attribute.Int("refdoc.workers", a.Config.Build.Workers)))
	defer span.End()
	start := time.Now()
	defer func() { observability.PhaseDuration.WithLabelValues("assemble").Observe(time.Since(start).Seconds()) }()

	workers := a.Config.Build.Workers
	if workers < 1 {
		workers = 1
	}
	pages := make([]report.Page, len(docs))
	errs := make([]error, len(docs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				pages[i], errs[i] = assembler.Page(docs[i])
			}
		}()
	}
	for i := range docs {
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
	for i, err := range errs {
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "assemble page"), errors.CtxSymbol, docs[i].Name)
		}
	}

	index, err := assembler.Index(docs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "assemble index")
	}
	return append(pages, index), nil
}

func (a *App) assemblerOptions() report.Options {
	project := a.Config.Project
	fm := make(map[string]string, len(a.Config.Output.FrontMatter)+1)
	indexFM := make(map[string]string, len(a.Config.Output.IndexFrontMatter)+1)
	if project.Image != "" {
		fm["image"] = project.Image
		indexFM["image"] = project.Image
	}
	for k, v := range a.Config.Output.FrontMatter {
		fm[k] = v
	}
	for k, v := range a.Config.Output.IndexFrontMatter {
		indexFM[k] = v
	}
	return report.Options{
		ProjectName:        project.Name,
		ProjectDescription: project.Description,
		FrontMatter:        fm,
		IndexFrontMatter:   indexFM,
		HTMLDescriptions:   a.Config.Output.HTMLEnabled(),
	}
}

// phase runs fn inside a span and records its duration.
func (a *App) phase(ctx context.Context, name string, fn func(context.Context) ([]parser.File, error)) ([]parser.File, error) {
	ctx, span := observability.Tracer.Start(ctx, "phase."+name)
	defer span.End()
	start := time.Now()
	files, err := fn(ctx)
	observability.PhaseDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
	}
	return files, err
}
