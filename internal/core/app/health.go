package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	s.app.stateMu.RLock()
	state := s.app.state
	s.app.stateMu.RUnlock()
	if state == nil {
		status.Components["graph"] = "not built yet"
	} else {
		status.Components["graph"] = fmt.Sprintf("ok (%d files, %d symbols)", state.files, state.graph.Len())
	}

	if s.app.store != nil {
		status.Components["manifest"] = "ok"
	} else if s.app.Config.DB.Enabled {
		status.Status = "degraded"
		status.Components["manifest"] = "missing but enabled in config"
	}

	if s.app.source != nil {
		status.Components["source"] = "ok"
	} else {
		status.Status = "degraded"
		status.Components["source"] = "missing"
	}

	return status
}
