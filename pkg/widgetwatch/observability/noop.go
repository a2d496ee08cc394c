package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordEvents does nothing.
func (NoopMetrics) RecordEvents(_ context.Context, _ string, _ int) {}

// RecordBatch does nothing.
func (NoopMetrics) RecordBatch(_ context.Context, _ int, _ error) {}

// RecordBreakpointChange does nothing.
func (NoopMetrics) RecordBreakpointChange(_ context.Context, _ string) {}

// RecordAnomaly does nothing.
func (NoopMetrics) RecordAnomaly(_ context.Context) {}

// RecordTerminal does nothing.
func (NoopMetrics) RecordTerminal(_ context.Context) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartFlushSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartFlushSpan(ctx context.Context, _ string, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartReobserveSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartReobserveSpan(ctx context.Context, _ string, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}
