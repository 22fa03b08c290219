package requestctx

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestLoggerDefaultsToNoop(t *testing.T) {
	if !IsNoop(Logger(context.Background())) {
		t.Fatalf("expected noop logger")
	}
	if !IsNoop(Logger(WithLogger(context.Background(), nil))) {
		t.Fatalf("nil logger should store noop")
	}
}

func TestLoggerRoundTrip(t *testing.T) {
	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	if Logger(ctx) != logger {
		t.Fatalf("logger not returned")
	}
}

func TestTraceRoundTrip(t *testing.T) {
	if TraceID(context.Background()) != "" {
		t.Fatalf("expected empty trace id")
	}
	ctx := WithTrace(context.Background(), TraceInfo{TraceID: "abc", ProjectID: "p"})
	info, ok := Trace(ctx)
	if !ok || info.TraceID != "abc" || info.ProjectID != "p" {
		t.Fatalf("unexpected trace info %+v", info)
	}
}
