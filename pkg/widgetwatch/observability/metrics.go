package observability

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records widgetwatch metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEvents records newly created ledger entries of one kind.
	RecordEvents(ctx context.Context, kind string, n int)

	// RecordBatch records a dispatched batch and whether the sink accepted it.
	RecordBatch(ctx context.Context, size int, err error)

	// RecordBreakpointChange records a re-observation after a layout change.
	RecordBreakpointChange(ctx context.Context, decision string)

	// RecordAnomaly records an ignored visibility signal.
	RecordAnomaly(ctx context.Context)

	// RecordTerminal records a widget reaching its terminal state.
	RecordTerminal(ctx context.Context)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsRecorded    metric.Int64Counter
	batchesSent       metric.Int64Counter
	batchSize         metric.Int64Histogram
	breakpointChanges metric.Int64Counter
	anomalies         metric.Int64Counter
	terminal          metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("widgetwatch")

	eventsRecorded, err := meter.Int64Counter("widgetwatch.events.recorded",
		metric.WithDescription("Number of logical events created"),
	)
	if err != nil {
		return nil, err
	}

	batchesSent, err := meter.Int64Counter("widgetwatch.batches.sent",
		metric.WithDescription("Number of batches handed to the sink"),
	)
	if err != nil {
		return nil, err
	}

	batchSize, err := meter.Int64Histogram("widgetwatch.batch.size",
		metric.WithDescription("Events per dispatched batch"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	breakpointChanges, err := meter.Int64Counter("widgetwatch.breakpoint.changes",
		metric.WithDescription("Number of evaluated breakpoint changes"),
	)
	if err != nil {
		return nil, err
	}

	anomalies, err := meter.Int64Counter("widgetwatch.signals.anomalies",
		metric.WithDescription("Number of ignored visibility signals"),
	)
	if err != nil {
		return nil, err
	}

	terminal, err := meter.Int64Counter("widgetwatch.terminal",
		metric.WithDescription("Number of widgets that delivered every event"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsRecorded:    eventsRecorded,
		batchesSent:       batchesSent,
		batchSize:         batchSize,
		breakpointChanges: breakpointChanges,
		anomalies:         anomalies,
		terminal:          terminal,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordEvents records created events.
func (m *otelMetrics) RecordEvents(ctx context.Context, kind string, n int) {
	if n <= 0 {
		return
	}
	m.eventsRecorded.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordBatch records a batch.
func (m *otelMetrics) RecordBatch(ctx context.Context, size int, err error) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil),
	}
	m.batchesSent.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.batchSize.Record(ctx, int64(size), metric.WithAttributes(attrs...))
}

// RecordBreakpointChange records a breakpoint evaluation.
func (m *otelMetrics) RecordBreakpointChange(ctx context.Context, decision string) {
	m.breakpointChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("decision", decision)))
}

// RecordAnomaly records an ignored signal.
func (m *otelMetrics) RecordAnomaly(ctx context.Context) {
	m.anomalies.Add(ctx, 1)
}

// RecordTerminal records a terminal widget.
func (m *otelMetrics) RecordTerminal(ctx context.Context) {
	m.terminal.Add(ctx, 1)
}
