package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/requestctx"
)

func TestWriteErrorEnvelope(t *testing.T) {
	ctx := requestctx.WithTrace(context.Background(), requestctx.TraceInfo{TraceID: "trace-1"})
	rec := httptest.NewRecorder()

	WriteError(ctx, rec, NewError("rate_limited", "too many\nrequests", http.StatusTooManyRequests).
		WithDetails(map[string]any{"retry_after": 30}))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "rate_limited" || body["message"] != "too many requests" {
		t.Fatalf("unexpected body %v", body)
	}
	if body["trace_id"] != "trace-1" {
		t.Fatalf("trace id missing: %v", body)
	}
	if body["retry_after"] != float64(30) {
		t.Fatalf("details missing: %v", body)
	}
}

func TestNewErrorDefaultsStatus(t *testing.T) {
	if got := NewError("x", "y", 0).Status; got != http.StatusInternalServerError {
		t.Fatalf("status = %d", got)
	}
}
