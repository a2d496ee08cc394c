package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("widgetwatch")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartFlushSpan starts a span for one batch dispatch.
	StartFlushSpan(ctx context.Context, widgetID string, events int) (context.Context, trace.Span)

	// StartReobserveSpan starts a span for a layout re-observation.
	StartReobserveSpan(ctx context.Context, widgetID string, minWidth int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartFlushSpan starts a span for one batch dispatch.
func (m *otelSpanManager) StartFlushSpan(ctx context.Context, widgetID string, events int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "widgetwatch.flush",
		trace.WithAttributes(
			attribute.String("widget.id", widgetID),
			attribute.Int("batch.events", events),
		),
		trace.WithSpanKind(trace.SpanKindProducer),
	)
}

// StartReobserveSpan starts a span for a layout re-observation.
func (m *otelSpanManager) StartReobserveSpan(ctx context.Context, widgetID string, minWidth int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "widgetwatch.reobserve",
		trace.WithAttributes(
			attribute.String("widget.id", widgetID),
			attribute.Int("layout.min_width", minWidth),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
