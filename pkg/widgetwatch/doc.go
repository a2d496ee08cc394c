/*
Package widgetwatch tracks which items of a recommendation widget a user has
actually seen and reports each impression once.

# Overview

A Tracker watches one widget. It resolves the responsive layout for the
current viewport width, splits the items into rows, and derives a visibility
threshold for every row. Viewport notifications are turned into logical
events in a ledger:

  - w_show: the widget itself became visible (more than 1 percent)
  - i_show: an item's row crossed its threshold
  - i_click: an item was clicked

Each (kind, subject) pair is stored once, forever. Unsent events are drained
into a single batch at the trailing edge of a 2 second throttle and handed to
a sink.Sink. Once the widget-shown event and every item the widest layout can
show have been sent, observation is torn down.

# Basic Usage

	tracker := widgetwatch.New(widgetwatch.Config{
	    WidgetID: "recs-home",
	    Items:    itemIDs,
	    Breakpoints: []layout.Layout{
	        {MinWidth: 0, Rows: 3, Columns: 2, RowSpacing: 16},
	        {MinWidth: 768, Rows: 2, Columns: 4, RowSpacing: 24},
	    },
	}, viewport, sink.NewHTTPSink(sink.DefaultHTTPConfig(endpoint)),
	    widgetwatch.WithLogger(logger),
	    widgetwatch.WithClickSource(clicks),
	)
	if err := tracker.Init(ctx); err != nil {
	    // Already logged. The widget reports nothing.
	}
	defer tracker.Destroy()

# Strategies

Lists up to 1.3 times the viewport height are observed through intersection
ratio notifications. Taller lists use scroll geometry, because the ratio of
a tall list is capped by viewportHeight/listHeight and could never reach the
lower rows' thresholds.

# Breakpoint Changes

With Breakpoints set, resizes are throttled to one evaluation per 500ms. A
new layout replaces the visibility strategy; the ledger is left alone so
nothing is re-sent or lost. ReobservePolicy controls whether a layout that
cannot show more items than were already sent is re-observed at all.

# Concurrency

All callbacks are serialized by the Tracker. Viewport, click source and sink
implementations must not call back into the Tracker synchronously.

# Observability

Logging uses log/slog via WithLogger. OpenTelemetry metrics and spans are
enabled with WithMetrics(true) and WithTracing(true).
*/
package widgetwatch
