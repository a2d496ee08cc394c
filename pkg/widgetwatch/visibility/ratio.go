package visibility

import "github.com/randalmurphal/widgetwatch/pkg/widgetwatch/layout"

// RatioStrategy compares each intersection ratio against every row's
// scaled threshold.
type RatioStrategy struct {
	tracker
}

// Compile-time interface check.
var _ Strategy = (*RatioStrategy)(nil)

// NewRatioStrategy creates a ratio strategy for p.Rows.
func NewRatioStrategy(p Params) *RatioStrategy {
	return &RatioStrategy{tracker: newTracker(p)}
}

// Mode returns ModeRatio.
func (s *RatioStrategy) Mode() Mode {
	return ModeRatio
}

// Thresholds returns the ratios to observe: the shown epsilon followed by
// each row's threshold.
func (s *RatioStrategy) Thresholds() []float64 {
	out := make([]float64, 0, len(s.rows)+1)
	out = append(out, ShownRatio)
	for _, row := range s.rows {
		out = append(out, row.Threshold)
	}
	return out
}

// Observe subscribes to ratio notifications for Thresholds.
func (s *RatioStrategy) Observe(vp Viewport, signal func(Signal)) (Subscription, error) {
	if vp == nil {
		return nil, ErrNoViewport
	}
	return vp.ObserveRatio(s.Thresholds(), func(e Entry) {
		signal(Signal{Kind: SignalRatio, Entry: e})
	}), nil
}

// Evaluate reveals every unresolved row whose threshold is at or below the
// reported ratio. A notification that is intersecting with a zero ratio, or
// not intersecting with a positive one, is an anomaly.
func (s *RatioStrategy) Evaluate(sig Signal) Result {
	if sig.Kind != SignalRatio {
		return Result{}
	}
	e := sig.Entry
	if e.IsIntersecting != (e.Ratio > 0) {
		return Result{Anomaly: true}
	}
	if !e.IsIntersecting {
		return Result{}
	}

	res := Result{
		Fraction:    e.Ratio,
		WidgetShown: e.Ratio > ShownRatio,
		ItemIDs: s.reveal(func(row layout.Row) bool {
			return row.Threshold <= e.Ratio
		}),
	}
	if res.WidgetShown {
		s.widgetShown = true
	}
	return res
}

// Done reports whether the widget and every row were reported.
func (s *RatioStrategy) Done() bool {
	return s.done()
}
