package handlers

import (
	"net/http"
	"time"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/httpx"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/repositories"
)

var startTime = time.Now()

// HealthHandlers serve liveness and readiness probes.
type HealthHandlers struct {
	repo repositories.HealthRepository
	now  func() time.Time
}

// NewHealthHandlers builds probes. A nil repo makes /readyz mirror /healthz.
func NewHealthHandlers(repo repositories.HealthRepository) *HealthHandlers {
	return &HealthHandlers{repo: repo, now: time.Now}
}

// Healthz reports that the process is serving.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    h.now().Sub(startTime).Round(time.Second).String(),
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// Readyz runs dependency checks. Only an error status fails the probe; degraded still serves.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		h.Healthz(w, r)
		return
	}
	report, err := h.repo.Collect(r.Context())
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("health_check_failed", err.Error(), http.StatusServiceUnavailable))
		return
	}
	status := http.StatusOK
	if report.Status == repositories.HealthStatusError {
		status = http.StatusServiceUnavailable
	}
	checks := make(map[string]any, len(report.Checks))
	for name, check := range report.Checks {
		checks[name] = map[string]any{
			"status":    check.Status,
			"detail":    check.Detail,
			"latencyMs": check.Latency.Milliseconds(),
		}
	}
	httpx.WriteJSON(w, status, map[string]any{
		"status":      report.Status,
		"checks":      checks,
		"generatedAt": report.GeneratedAt.UTC().Format(time.RFC3339),
	})
}
