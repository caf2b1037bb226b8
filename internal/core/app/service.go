package app

import (
	"context"
	"fmt"

	"refdoc/internal/core/errors"
	"refdoc/internal/core/ports"
	"refdoc/internal/engine/resolver"
	"refdoc/internal/engine/symbol"
	"refdoc/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type buildService struct {
	app *App
}

var _ ports.BuildService = (*buildService)(nil)

func NewBuildService(app *App) ports.BuildService {
	return &buildService{app: app}
}

func (a *App) BuildService() ports.BuildService {
	return NewBuildService(a)
}

func (s *buildService) Build(ctx context.Context) (ports.BuildResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.BuildResult{}, err
	}
	if s.app == nil {
		return ports.BuildResult{}, fmt.Errorf("app is required")
	}
	return s.app.Build(ctx)
}

func (s *buildService) Watch(ctx context.Context, handler func(ports.WatchUpdate)) error {
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	return s.app.Watch(ctx, handler)
}

// ResolveType resolves text in the alias context of owner, collecting the
// project state first when no build has run yet.
func (s *buildService) ResolveType(ctx context.Context, owner, text string) (ports.ResolvedType, error) {
	ctx, span := observability.Tracer.Start(ctx, "buildService.ResolveType", trace.WithAttributes(
		attribute.String("refdoc.owner", owner),
	))
	defer span.End()

	state, err := s.app.currentState(ctx)
	if err != nil {
		return ports.ResolvedType{}, err
	}
	owner = symbol.Normalize(owner)
	if state.resolver.Table(owner) == nil {
		return ports.ResolvedType{}, errors.AddContext(errors.New(errors.CodeNotFound, "unknown symbol"), errors.CtxSymbol, owner)
	}
	res := state.resolver.ResolveExpr(owner, text)
	return ports.ResolvedType{
		Owner:      owner,
		Input:      text,
		Text:       res.Text,
		References: res.References,
		Linkable:   resolver.Linkable(owner, res.References),
	}, nil
}

func (s *buildService) LinkPath(ctx context.Context, from, to string) (string, bool, error) {
	state, err := s.app.currentState(ctx)
	if err != nil {
		return "", false, err
	}
	path, ok := state.graph.LinkPath(from, to)
	return path, ok, nil
}

// currentState returns the state of the last build, collecting it without
// writing pages when there is none.
func (a *App) currentState(ctx context.Context) (*buildState, error) {
	a.stateMu.RLock()
	state := a.state
	a.stateMu.RUnlock()
	if state != nil {
		return state, nil
	}

	a.buildMu.Lock()
	defer a.buildMu.Unlock()
	state, err := a.collect(ctx)
	if err != nil {
		return nil, err
	}
	a.stateMu.Lock()
	a.state = state
	a.stateMu.Unlock()
	return state, nil
}
