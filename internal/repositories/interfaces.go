package repositories

import (
	"context"
	"time"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/contact"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// LeadRepository persists contact leads.
type LeadRepository interface {
	contact.LeadSink
	Recent(ctx context.Context, limit int) ([]contact.Lead, error)
}

// HealthStatus summarises one dependency or the whole report.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "ok"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusError    HealthStatus = "error"
)

// HealthCheck is the outcome of one dependency probe.
type HealthCheck struct {
	Status    HealthStatus  `json:"status"`
	Detail    string        `json:"detail,omitempty"`
	Latency   time.Duration `json:"latencyMs"`
	CheckedAt time.Time     `json:"checkedAt"`
}

// HealthReport aggregates dependency probes for /readyz.
type HealthReport struct {
	Status      HealthStatus           `json:"status"`
	Checks      map[string]HealthCheck `json:"checks"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

// HealthRepository evaluates dependency readiness.
type HealthRepository interface {
	Collect(ctx context.Context) (HealthReport, error)
}
