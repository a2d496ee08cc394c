package widgetwatch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/clock"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/dispatch"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/observability"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/store"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/visibility"
)

// ReobservePolicy decides whether a breakpoint change re-attaches
// observation.
type ReobservePolicy int

const (
	// ReobserveWhenCapacityExceedsAcknowledged skips re-observation when
	// the new layout cannot show more items than were already acknowledged.
	// The current layout is kept on skip. This can under-serve users that
	// grow the viewport before scrolling far.
	ReobserveWhenCapacityExceedsAcknowledged ReobservePolicy = iota

	// ReobserveAlways re-observes on every breakpoint change.
	ReobserveAlways
)

// String returns the policy name used in tuning files.
func (p ReobservePolicy) String() string {
	switch p {
	case ReobserveWhenCapacityExceedsAcknowledged:
		return "capacity"
	case ReobserveAlways:
		return "always"
	default:
		return fmt.Sprintf("ReobservePolicy(%d)", int(p))
	}
}

// ParseReobservePolicy parses "capacity" or "always".
func ParseReobservePolicy(s string) (ReobservePolicy, error) {
	switch s {
	case "capacity", "":
		return ReobserveWhenCapacityExceedsAcknowledged, nil
	case "always":
		return ReobserveAlways, nil
	default:
		return 0, fmt.Errorf("%w: unknown reobserve policy %q", ErrInvalidConfig, s)
	}
}

// options holds tracker configuration beyond the widget definition.
type options struct {
	logger           *slog.Logger
	metrics          observability.MetricsRecorder
	metricsEnabled   bool
	spans            observability.SpanManager
	tracingEnabled   bool
	clock            clock.Scheduler
	dispatchInterval time.Duration
	resizeInterval   time.Duration
	store            store.Store
	clicks           ClickSource
	policy           ReobservePolicy
	tallListRatio    float64
	batchIDs         func() string
}

func defaultOptions() options {
	return options{
		metrics:          observability.NoopMetrics{},
		spans:            observability.NoopSpanManager{},
		clock:            clock.Real{},
		dispatchInterval: dispatch.DefaultDispatchInterval,
		resizeInterval:   dispatch.DefaultResizeInterval,
		policy:           ReobserveWhenCapacityExceedsAcknowledged,
		tallListRatio:    visibility.DefaultTallListRatio,
	}
}

// Option configures a Tracker.
type Option func(*options)

// WithLogger sets the logger. Without one the tracker is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(o *options) {
		o.metricsEnabled = enabled
		if enabled {
			o.metrics = observability.NewMetricsRecorder()
		} else {
			o.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a specific metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
			o.metricsEnabled = true
		}
	}
}

// WithTracing enables OpenTelemetry spans using the global tracer provider.
func WithTracing(enabled bool) Option {
	return func(o *options) {
		o.tracingEnabled = enabled
		if enabled {
			o.spans = observability.NewSpanManager()
		} else {
			o.spans = observability.NoopSpanManager{}
		}
	}
}

// WithClock sets the scheduler for throttle timers.
// Default: clock.Real{}
func WithClock(c clock.Scheduler) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithDispatchInterval sets the batch throttle window.
// Default: 2s
func WithDispatchInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.dispatchInterval = d
		}
	}
}

// WithResizeInterval sets the resize throttle window.
// Default: 500ms
func WithResizeInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.resizeInterval = d
		}
	}
}

// WithSnapshotStore persists acknowledged shown events per widget. Init
// restores them so a re-mounted widget does not resend.
func WithSnapshotStore(s store.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithClickSource enables click tracking.
func WithClickSource(c ClickSource) Option {
	return func(o *options) {
		o.clicks = c
	}
}

// WithReobservePolicy sets the breakpoint change policy.
// Default: ReobserveWhenCapacityExceedsAcknowledged
func WithReobservePolicy(p ReobservePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithTallListRatio sets the listHeight/viewportHeight above which scroll
// geometry is used instead of ratio notifications.
// Default: 1.3
func WithTallListRatio(r float64) Option {
	return func(o *options) {
		if r > 0 {
			o.tallListRatio = r
		}
	}
}

// WithBatchIDs overrides batch id generation. Default: random UUIDs.
func WithBatchIDs(fn func() string) Option {
	return func(o *options) {
		o.batchIDs = fn
	}
}
