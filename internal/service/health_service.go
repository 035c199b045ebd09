package service

import (
	"context"
	"sort"

	"microblogTTS/internal/repository"
)

// Probe checks one backing dependency.
type Probe func(ctx context.Context) error

type HealthReport struct {
	Status        string            `json:"status"`
	Checks        map[string]string `json:"checks"`
	MissingTables []string          `json:"missingTables,omitempty"`
}

func (r HealthReport) Healthy() bool {
	return r.Status == "ok"
}

type HealthService interface {
	Check(ctx context.Context) HealthReport
}

type healthService struct {
	schema repository.SchemaRepository
	probes map[string]Probe
}

func NewHealthService(schema repository.SchemaRepository, probes map[string]Probe) HealthService {
	return &healthService{schema: schema, probes: probes}
}

func (h *healthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{Status: "ok", Checks: map[string]string{}}

	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.probes[name](ctx); err != nil {
			report.Checks[name] = err.Error()
			report.Status = "degraded"
			continue
		}
		report.Checks[name] = "ok"
	}

	missing, err := h.schema.MissingTables(ctx)
	switch {
	case err != nil:
		report.Checks["schema"] = err.Error()
		report.Status = "degraded"
	case len(missing) > 0:
		report.Checks["schema"] = "missing tables"
		report.MissingTables = missing
		report.Status = "degraded"
	default:
		report.Checks["schema"] = "ok"
	}

	return report
}
