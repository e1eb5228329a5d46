package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := Logger
	Logger = slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { Logger = prev })
	return buf
}

func TestWithRun(t *testing.T) {
	buf := captureLogs(t)

	ctx := WithRun(context.Background(), "run-1", "greet")
	if got := RunID(ctx); got != "run-1" {
		t.Errorf("RunID() = %q, want run-1", got)
	}

	InfoContext(ctx, "hello")
	out := buf.String()
	if !strings.Contains(out, "run_id=run-1") || !strings.Contains(out, "function=greet") {
		t.Errorf("log output missing run attributes: %s", out)
	}
}

func TestBridgeRequestLog(t *testing.T) {
	buf := captureLogs(t)

	BridgeRequestLog(context.Background(), "get_input", 3, nil)
	BridgeRequestLog(context.Background(), "append_output", 1, errors.New("boom"))

	out := buf.String()
	if !strings.Contains(out, "op=get_input") {
		t.Errorf("expected debug log for get_input: %s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "error=boom") {
		t.Errorf("expected warn log for failed request: %s", out)
	}
}

func TestMetrics(t *testing.T) {
	InitMetrics()

	RecordExecution("greet", "success", 0.1)
	RecordExecution("greet", "success", 0.2)
	RecordExecution("greet", "failed", 0.2)
	RecordBridgeRequest("get_input")

	m := DefaultMetrics()
	if got := testutil.ToFloat64(m.ExecutionsTotal.WithLabelValues("greet", "success")); got != 2 {
		t.Errorf("executions_total{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.BridgeRequests.WithLabelValues("get_input")); got != 1 {
		t.Errorf("bridge_requests_total = %v, want 1", got)
	}

	RunStarted()
	RunFinished()
	if got := testutil.ToFloat64(m.ActiveRuns); got != 0 {
		t.Errorf("active_runs = %v, want 0", got)
	}
}

func TestTraceIDWithoutSpan(t *testing.T) {
	if id := TraceID(context.Background()); id != "" {
		t.Errorf("TraceID() = %q, want empty", id)
	}
}
