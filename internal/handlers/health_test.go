package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/repositories"
)

type stubHealthRepo struct {
	report repositories.HealthReport
	err    error
}

func (s stubHealthRepo) Collect(context.Context) (repositories.HealthReport, error) {
	return s.report, s.err
}

func TestReadyz(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name   string
		repo   stubHealthRepo
		status int
	}{
		{
			name: "ok",
			repo: stubHealthRepo{report: repositories.HealthReport{
				Status:      repositories.HealthStatusOK,
				Checks:      map[string]repositories.HealthCheck{"templates": {Status: repositories.HealthStatusOK}},
				GeneratedAt: now,
			}},
			status: http.StatusOK,
		},
		{
			name: "degraded still serves",
			repo: stubHealthRepo{report: repositories.HealthReport{
				Status:      repositories.HealthStatusDegraded,
				Checks:      map[string]repositories.HealthCheck{"firestore": {Status: repositories.HealthStatusDegraded, Detail: "slow"}},
				GeneratedAt: now,
			}},
			status: http.StatusOK,
		},
		{
			name: "error fails probe",
			repo: stubHealthRepo{report: repositories.HealthReport{
				Status:      repositories.HealthStatusError,
				Checks:      map[string]repositories.HealthCheck{"firestore": {Status: repositories.HealthStatusError, Detail: "unavailable"}},
				GeneratedAt: now,
			}},
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "collect error",
			repo:   stubHealthRepo{err: errors.New("boom")},
			status: http.StatusServiceUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandlers(tc.repo)
			rec := httptest.NewRecorder()
			h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
		})
	}
}
