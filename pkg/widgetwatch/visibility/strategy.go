package visibility

import (
	"errors"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/layout"
)

// Tuning defaults.
const (
	// DefaultTallListRatio is the listHeight/viewportHeight above which
	// scroll geometry replaces ratio notifications.
	DefaultTallListRatio = 1.3

	// ShownRatio is the ratio above which the widget counts as shown.
	ShownRatio = 0.01

	// ShownPercent is the scroll percent above which the widget counts as shown.
	ShownPercent = 1
)

// ErrNoViewport is returned by Observe when called without a viewport.
var ErrNoViewport = errors.New("no viewport")

// Mode names a strategy.
type Mode string

// Strategy modes.
const (
	ModeRatio  Mode = "ratio"
	ModeScroll Mode = "scroll"
)

// SignalKind says which notification produced a Signal.
type SignalKind int

// Signal kinds.
const (
	SignalRatio SignalKind = iota + 1
	SignalScroll
)

// Signal is one notification routed from a Viewport to a Strategy.
// Entry is set for SignalRatio only.
type Signal struct {
	Kind  SignalKind
	Entry Entry
}

// Result is what one signal revealed.
type Result struct {
	// Fraction is the visible fraction of the list (0..1).
	Fraction float64

	// WidgetShown is true when Fraction is past the shown epsilon.
	WidgetShown bool

	// ItemIDs are the items of rows that crossed their threshold with this
	// signal. Rows already reported are not repeated.
	ItemIDs []string

	// Anomaly is true for contradictory ratio notifications.
	Anomaly bool
}

// Strategy derives seen rows from viewport signals.
type Strategy interface {
	// Mode names the strategy.
	Mode() Mode

	// Observe registers with vp. Every notification is forwarded to signal
	// as a Signal to be passed back to Evaluate.
	Observe(vp Viewport, signal func(Signal)) (Subscription, error)

	// Evaluate processes one signal.
	Evaluate(s Signal) Result

	// Done reports whether the widget and every row of the current layout
	// have been reported.
	Done() bool
}

// Params configures strategy selection.
type Params struct {
	Rows           []layout.Row
	ListHeight     float64
	ViewportHeight float64

	// TallListRatio overrides DefaultTallListRatio when positive.
	TallListRatio float64

	// WidgetShown is true when the widget-shown event already exists.
	WidgetShown bool

	// ItemShown reports whether an item-shown event already exists. Rows
	// whose items all exist start out resolved.
	ItemShown func(itemID string) bool
}

// Select picks the scroll strategy for tall lists and the ratio strategy
// otherwise.
func Select(p Params) Strategy {
	ratio := p.TallListRatio
	if ratio <= 0 {
		ratio = DefaultTallListRatio
	}
	if p.ViewportHeight > 0 && p.ListHeight/p.ViewportHeight > ratio {
		return NewScrollStrategy(p)
	}
	return NewRatioStrategy(p)
}

// tracker holds the resolution state shared by both strategies.
type tracker struct {
	rows        []layout.Row
	resolved    []bool
	widgetShown bool
}

func newTracker(p Params) tracker {
	t := tracker{
		rows:        p.Rows,
		resolved:    make([]bool, len(p.Rows)),
		widgetShown: p.WidgetShown,
	}
	for i, row := range p.Rows {
		t.resolved[i] = allShown(row.ItemIDs, p.ItemShown)
	}
	return t
}

func allShown(ids []string, shown func(string) bool) bool {
	for _, id := range ids {
		if shown == nil || !shown(id) {
			return false
		}
	}
	return true
}

// reveal marks every unresolved row passing crossed and returns its items.
func (t *tracker) reveal(crossed func(layout.Row) bool) []string {
	var ids []string
	for i, row := range t.rows {
		if t.resolved[i] || !crossed(row) {
			continue
		}
		t.resolved[i] = true
		ids = append(ids, row.ItemIDs...)
	}
	return ids
}

func (t *tracker) done() bool {
	if !t.widgetShown {
		return false
	}
	for _, r := range t.resolved {
		if !r {
			return false
		}
	}
	return true
}
