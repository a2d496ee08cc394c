package visibility

import (
	"math"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/layout"
)

// ScrollStrategy measures the list against the viewport in page coordinates
// and compares the viewed percent against each row's un-scaled percent.
type ScrollStrategy struct {
	tracker
	vp Viewport
}

// Compile-time interface check.
var _ Strategy = (*ScrollStrategy)(nil)

// NewScrollStrategy creates a scroll strategy for p.Rows.
func NewScrollStrategy(p Params) *ScrollStrategy {
	return &ScrollStrategy{tracker: newTracker(p)}
}

// Mode returns ModeScroll.
func (s *ScrollStrategy) Mode() Mode {
	return ModeScroll
}

// Observe subscribes to scroll notifications. The caller evaluates once
// right after Observe to account for the initial scroll position.
func (s *ScrollStrategy) Observe(vp Viewport, signal func(Signal)) (Subscription, error) {
	if vp == nil {
		return nil, ErrNoViewport
	}
	s.vp = vp
	return vp.OnScroll(func() {
		signal(Signal{Kind: SignalScroll})
	}), nil
}

// Evaluate measures the current geometry. It returns an empty Result before
// Observe or when the list is gone.
func (s *ScrollStrategy) Evaluate(sig Signal) Result {
	if sig.Kind != SignalScroll || s.vp == nil {
		return Result{}
	}
	rect, ok := s.vp.ListRect()
	if !ok || rect.Height <= 0 {
		return Result{}
	}

	_, height := s.vp.Size()
	scrollY := s.vp.ScrollY()
	percent := ViewedPercent(
		scrollY,
		scrollY+float64(height),
		rect.Top+scrollY,
		rect.Bottom()+scrollY,
	)

	res := Result{
		Fraction:    float64(percent) / 100,
		WidgetShown: percent > ShownPercent,
		ItemIDs: s.reveal(func(row layout.Row) bool {
			return row.Percent <= float64(percent)
		}),
	}
	if res.WidgetShown {
		s.widgetShown = true
	}
	return res
}

// Done reports whether the widget and every row were reported.
func (s *ScrollStrategy) Done() bool {
	return s.done()
}

// ViewedPercent returns how much of an element, as an integer percent of its
// height, has entered the viewport. All arguments are page coordinates.
//
// An element that does not overlap the viewport scores 0. An element whose
// bottom edge is above the viewport bottom has been seen in full and scores
// 100, which also covers an element fully inside the viewport and one
// clipped at the top. Otherwise the element extends below the viewport and
// scores the part above the viewport bottom. The result is truncated.
func ViewedPercent(viewportTop, viewportBottom, elementTop, elementBottom float64) int {
	height := elementBottom - elementTop
	if height <= 0 {
		return 0
	}
	if elementBottom <= viewportTop || elementTop >= viewportBottom {
		return 0
	}
	if elementBottom < viewportBottom {
		return 100
	}
	return int(math.Floor((viewportBottom - elementTop) / height * 100))
}
