package dispatch

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/ledger"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/observability"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/sink"
)

// Report describes one Flush.
type Report struct {
	// BatchID is empty when nothing was pending.
	BatchID string

	// Sent is the number of events handed to the sink.
	Sent int

	// Err is the sink error, if any. Events are acknowledged regardless.
	Err error

	// Complete is true once every event the widget can produce was
	// acknowledged.
	Complete bool
}

// Dispatcher turns unacknowledged ledger entries into sink batches.
// It is not safe for concurrent use; the caller serializes Flush.
type Dispatcher struct {
	widgetID      string
	ledger        *ledger.Ledger
	sink          sink.Sink
	terminalItems int

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	newID   func() string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

// WithSpans sets the span manager.
func WithSpans(s observability.SpanManager) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.spans = s
		}
	}
}

// WithBatchIDs overrides batch id generation.
func WithBatchIDs(fn func() string) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// New creates a dispatcher. terminalItems is the number of acknowledged
// item-shown events after which the widget has nothing left to report.
func New(widgetID string, l *ledger.Ledger, s sink.Sink, terminalItems int, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		widgetID:      widgetID,
		ledger:        l,
		sink:          s,
		terminalItems: terminalItems,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Flush sends every unacknowledged event as one batch and acknowledges
// them. Acknowledgment does not depend on the sink's result.
func (d *Dispatcher) Flush(ctx context.Context) Report {
	pending := d.ledger.Unacknowledged()
	if len(pending) == 0 {
		return Report{Complete: d.Complete()}
	}

	ctx, span := d.spans.StartFlushSpan(ctx, d.widgetID, len(pending))
	done := observability.TimedOperation()

	batch := sink.NewBatch(d.newID(), d.widgetID, pending)
	err := d.sink.Send(ctx, batch)
	d.ledger.Acknowledge(pending)

	d.metrics.RecordBatch(ctx, len(pending), err)
	d.spans.EndSpanWithError(span, err)
	if err != nil {
		observability.LogSinkError(d.logger, d.widgetID, batch.ID, err)
	} else {
		observability.LogBatchSent(d.logger, d.widgetID, batch.ID, len(pending), done())
	}

	return Report{
		BatchID:  batch.ID,
		Sent:     len(pending),
		Err:      err,
		Complete: d.Complete(),
	}
}

// Complete reports whether the widget-shown event and enough item-shown
// events have been acknowledged.
func (d *Dispatcher) Complete() bool {
	if !d.ledger.IsAcknowledged(ledger.WidgetShown, d.widgetID) {
		return false
	}
	return d.ledger.AcknowledgedCount(ledger.ItemShown) >= d.terminalItems
}

// TerminalItems returns the item-shown count required for completion.
func (d *Dispatcher) TerminalItems() int {
	return d.terminalItems
}
