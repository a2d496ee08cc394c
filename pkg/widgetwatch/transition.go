package widgetwatch

import (
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/layout"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/ledger"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/observability"
)

// Breakpoint decisions, as logged and recorded in metrics.
const (
	decisionSkipped    = "skipped"
	decisionReobserved = "reobserved"
	decisionFailed     = "failed"
)

// onResizeTimer runs at the trailing edge of the resize throttle.
func (t *Tracker) onResizeTimer() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateObserving {
		return
	}
	t.transition()
}

// transition re-resolves the layout for the current width and, when it
// changed or nothing is observed, replaces the visibility strategy. The
// ledger is never touched.
func (t *Tracker) transition() {
	width, height := t.vp.Size()
	from := t.current

	next, ok := layout.Resolve(t.layouts, width)
	if !ok {
		err := &ConfigurationError{Op: "resize", WidgetID: t.cfg.WidgetID, Err: ErrNoMatchingBreakpoint}
		observability.LogConfigError(t.logger, t.cfg.WidgetID, err)
		t.recordDecision(from, from, width, decisionFailed)
		return
	}
	// A failed transition leaves no strategy attached. Any resize after it
	// retries, even within the same breakpoint, and is never skipped.
	detached := t.strategy == nil
	if next == from && !detached {
		return
	}
	if !detached && t.opts.policy == ReobserveWhenCapacityExceedsAcknowledged &&
		next.Capacity() <= t.ledger.AcknowledgedCount(ledger.ItemShown) {
		t.recordDecision(from, next, width, decisionSkipped)
		return
	}

	_, span := t.opts.spans.StartReobserveSpan(t.ctx, t.cfg.WidgetID, next.MinWidth)
	t.releaseStrategy()
	t.current = next
	err := t.observe(next, height)
	t.opts.spans.EndSpanWithError(span, err)
	if err != nil {
		// The resize listener stays, so a later resize can recover.
		cerr := &ConfigurationError{Op: "resize", WidgetID: t.cfg.WidgetID, Err: err}
		observability.LogConfigError(t.logger, t.cfg.WidgetID, cerr)
		t.recordDecision(from, next, width, decisionFailed)
		return
	}
	t.recordDecision(from, next, width, decisionReobserved)
}

func (t *Tracker) recordDecision(from, to layout.Layout, width int, decision string) {
	t.opts.metrics.RecordBreakpointChange(t.ctx, decision)
	observability.LogBreakpointChange(t.logger, t.cfg.WidgetID, from.MinWidth, to.MinWidth, width, decision)
}
