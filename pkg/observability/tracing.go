package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "formchassis/executor"

// Tracer 返回全局 TracerProvider 提供的 Tracer
// 未配置 TracerProvider 时为 noop 实现
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartRunSpan 为一次函数运行开启 span
func StartRunSpan(ctx context.Context, function, runID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "function.execute",
		trace.WithAttributes(
			attribute.String("function.name", function),
			attribute.String("run.id", runID),
		),
	)
}

// EndSpan 根据结果设置 span 状态并结束
func EndSpan(span trace.Span, status string, err error) {
	span.SetAttributes(attribute.String("run.status", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceID 返回 context 中有效 span 的 trace id
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
