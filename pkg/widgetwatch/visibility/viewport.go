// Package visibility turns viewport signals into the set of rows, and hence
// items, a user has seen.
//
// Two strategies share one contract. RatioStrategy consumes intersection
// ratio notifications. ScrollStrategy measures the list rectangle against the
// viewport on every scroll and is used for lists much taller than the
// viewport, where the ratio can never reach the lower rows' thresholds.
package visibility

// Rect is a vertical extent in viewport coordinates.
type Rect struct {
	Top    float64
	Height float64
}

// Bottom returns Top+Height.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Entry is one intersection ratio notification.
type Entry struct {
	TargetID       string
	IsIntersecting bool
	Ratio          float64
}

// Subscription is a registration that can be released.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

// Unsubscribe calls f.
func (f SubscriptionFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}

// Viewport is the host's source of geometry and visibility notifications.
//
// Callbacks must be delivered one at a time and never synchronously from
// inside a Viewport method.
type Viewport interface {
	// Size returns the viewport width and height.
	Size() (width, height int)

	// ScrollY returns the vertical scroll offset of the page.
	ScrollY() float64

	// ListRect returns the widget list's rectangle in viewport coordinates.
	// ok is false when the list element is not present.
	ListRect() (r Rect, ok bool)

	// ObserveRatio delivers an Entry whenever the list's intersection ratio
	// crosses one of thresholds.
	ObserveRatio(thresholds []float64, fn func(Entry)) Subscription

	// OnScroll notifies after every scroll.
	OnScroll(fn func()) Subscription

	// OnResize notifies after every viewport resize.
	OnResize(fn func()) Subscription
}
