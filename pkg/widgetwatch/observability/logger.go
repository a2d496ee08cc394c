// Package observability provides structured logging, metrics, and tracing
// for widgetwatch.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds widget context to a logger.
// Returns a new logger with widget_id and mode fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "recs-home", "ratio")
//	enriched.Info("observing") // includes widget_id, mode
func EnrichLogger(logger *slog.Logger, widgetID, mode string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("widget_id", widgetID),
		slog.String("mode", mode),
	)
}

// LogInit logs that a widget started observing.
func LogInit(logger *slog.Logger, widgetID, strategy string, rows int) {
	if logger == nil {
		return
	}
	logger.Info("widget observer initialized",
		slog.String("widget_id", widgetID),
		slog.String("strategy", strategy),
		slog.Int("rows", rows),
	)
}

// LogConfigError logs a configuration failure. These are never fatal to the host.
func LogConfigError(logger *slog.Logger, widgetID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("widget observer configuration failed",
		slog.String("widget_id", widgetID),
		slog.String("error", err.Error()),
	)
}

// LogSignalAnomaly logs an ignored visibility signal.
func LogSignalAnomaly(logger *slog.Logger, widgetID string, intersecting bool, ratio float64) {
	if logger == nil {
		return
	}
	logger.Debug("visibility signal ignored",
		slog.String("widget_id", widgetID),
		slog.Bool("is_intersecting", intersecting),
		slog.Float64("ratio", ratio),
	)
}

// LogRowsSeen logs rows that crossed their threshold.
func LogRowsSeen(logger *slog.Logger, widgetID string, fraction float64, items int) {
	if logger == nil {
		return
	}
	logger.Debug("rows seen",
		slog.String("widget_id", widgetID),
		slog.Float64("fraction", fraction),
		slog.Int("items", items),
	)
}

// LogBatchSent logs a dispatched batch.
func LogBatchSent(logger *slog.Logger, widgetID, batchID string, events int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event batch dispatched",
		slog.String("widget_id", widgetID),
		slog.String("batch_id", batchID),
		slog.Int("events", events),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogSinkError logs a sink failure (non-fatal, never retried).
func LogSinkError(logger *slog.Logger, widgetID, batchID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("event sink failed",
		slog.String("widget_id", widgetID),
		slog.String("batch_id", batchID),
		slog.String("error", err.Error()),
	)
}

// LogBreakpointChange logs a layout transition.
func LogBreakpointChange(logger *slog.Logger, widgetID string, fromMin, toMin, width int, decision string) {
	if logger == nil {
		return
	}
	logger.Info("breakpoint evaluated",
		slog.String("widget_id", widgetID),
		slog.Int("from_width", fromMin),
		slog.Int("to_width", toMin),
		slog.Int("viewport_width", width),
		slog.String("decision", decision),
	)
}

// LogObservationReleased logs that every row of the current layout was seen.
func LogObservationReleased(logger *slog.Logger, widgetID string) {
	if logger == nil {
		return
	}
	logger.Debug("all rows of current layout seen, observation released",
		slog.String("widget_id", widgetID),
	)
}

// LogTerminal logs that every possible event was delivered.
func LogTerminal(logger *slog.Logger, widgetID string, acknowledged int) {
	if logger == nil {
		return
	}
	logger.Info("all events for all breakpoints sent",
		slog.String("widget_id", widgetID),
		slog.Int("acknowledged", acknowledged),
	)
}

// LogClickDropped logs a click without a resolvable item id.
func LogClickDropped(logger *slog.Logger, widgetID string) {
	if logger == nil {
		return
	}
	logger.Warn("click target has no item id",
		slog.String("widget_id", widgetID),
	)
}

// LogStoreError logs a snapshot store failure (non-fatal).
func LogStoreError(logger *slog.Logger, widgetID, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("snapshot store failed",
		slog.String("widget_id", widgetID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// LogDestroy logs teardown.
func LogDestroy(logger *slog.Logger, widgetID string, flushed int) {
	if logger == nil {
		return
	}
	logger.Info("widget observer destroyed",
		slog.String("widget_id", widgetID),
		slog.Int("flushed", flushed),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
