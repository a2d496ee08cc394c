package widgetwatch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	widgetwatch "github.com/randalmurphal/widgetwatch/pkg/widgetwatch"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/layout"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/visibility"
)

// responsiveConfig has a narrow 3x2 grid and a wide 2x4 grid over eight
// items.
func responsiveConfig() widgetwatch.Config {
	return widgetwatch.Config{
		WidgetID: "w1",
		Items:    itemIDs(8),
		Breakpoints: []layout.Layout{
			{MinWidth: 768, Rows: 2, Columns: 4},
			{MinWidth: 0, Rows: 3, Columns: 2},
		},
	}
}

func TestTransition_PreservesAcknowledgedEvents(t *testing.T) {
	h := newHarness(t, responsiveConfig(), 500, 800)
	h.vp.SetList(1000, 600)
	require.NoError(t, h.tracker.Init(context.Background()))

	l, _ := h.tracker.Layout()
	assert.Equal(t, 0, l.MinWidth)
	assert.Equal(t, 767, l.MaxWidth)

	// The whole list is visible: all three narrow rows, six items.
	h.vp.ScrollTo(1000)
	h.flush()
	require.Len(t, h.sink.Batches(), 1)
	assert.Len(t, h.sink.Batches()[0].Events, 7)
	assert.Equal(t, widgetwatch.StateObserving, h.tracker.State(), "the wide grid shows two more items")

	ratio, _, resize := h.vp.Subscribers()
	assert.Equal(t, 0, ratio)
	assert.Equal(t, 1, resize)

	h.vp.Resize(1024, 800)
	h.clock.Advance(499 * time.Millisecond)
	l, _ = h.tracker.Layout()
	assert.Equal(t, 0, l.MinWidth, "resize is throttled")

	h.clock.Advance(time.Millisecond)
	l, _ = h.tracker.Layout()
	assert.Equal(t, 768, l.MinWidth)
	assert.Equal(t, []string{"reobserved"}, h.metrics.decisions)

	// Row one of the wide grid is already recorded; row two adds g and h.
	h.vp.Notify()
	h.flush()

	batches := h.sink.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, shown("g", "h"), batches[1].Events)
	assert.Len(t, h.tracker.Events(), 9)
	assert.Equal(t, widgetwatch.StateTerminal, h.tracker.State())

	ratio, scroll, resize := h.vp.Subscribers()
	assert.Zero(t, ratio+scroll+resize)
}

func TestTransition_CoalescesResizes(t *testing.T) {
	h := newHarness(t, responsiveConfig(), 500, 800)
	h.vp.SetList(1000, 600)
	require.NoError(t, h.tracker.Init(context.Background()))

	for _, w := range []int{600, 800, 900, 1024} {
		h.vp.Resize(w, 800)
		h.clock.Advance(100 * time.Millisecond)
	}
	h.clock.Advance(time.Second)

	assert.Equal(t, []string{"reobserved"}, h.metrics.decisions)
	l, _ := h.tracker.Layout()
	assert.Equal(t, 768, l.MinWidth)
}

func TestTransition_SameLayoutIsSilent(t *testing.T) {
	h := newHarness(t, responsiveConfig(), 500, 800)
	h.vp.SetList(1000, 600)
	require.NoError(t, h.tracker.Init(context.Background()))

	h.vp.Resize(700, 800)
	h.clock.Advance(time.Second)

	assert.Empty(t, h.metrics.decisions)
	ratio, _, _ := h.vp.Subscribers()
	assert.Equal(t, 1, ratio, "the original observation stays attached")
}

func TestTransition_Policies(t *testing.T) {
	// The middle breakpoint fits fewer items than the narrow one already
	// delivered. The widest keeps the tracker from reaching its terminal
	// state early.
	cfg := widgetwatch.Config{
		WidgetID: "w1",
		Items:    itemIDs(10),
		Breakpoints: []layout.Layout{
			{MinWidth: 0, Rows: 3, Columns: 2},
			{MinWidth: 768, Rows: 1, Columns: 4},
			{MinWidth: 1200, Rows: 3, Columns: 4},
		},
	}

	tests := []struct {
		name         string
		policy       widgetwatch.ReobservePolicy
		wantMinWidth int
		wantDecision string
	}{
		{"capacity skips", widgetwatch.ReobserveWhenCapacityExceedsAcknowledged, 0, "skipped"},
		{"always reobserves", widgetwatch.ReobserveAlways, 768, "reobserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, cfg, 500, 800, widgetwatch.WithReobservePolicy(tt.policy))
			h.vp.SetList(1000, 600)
			require.NoError(t, h.tracker.Init(context.Background()))

			h.vp.ScrollTo(1000)
			h.flush()
			before := h.tracker.Events()
			require.Len(t, before, 7)

			h.vp.Resize(800, 800)
			h.clock.Advance(time.Second)

			l, _ := h.tracker.Layout()
			assert.Equal(t, tt.wantMinWidth, l.MinWidth)
			assert.Equal(t, []string{tt.wantDecision}, h.metrics.decisions)
			assert.Equal(t, before, h.tracker.Events(), "a transition never touches the ledger")
			assert.Equal(t, widgetwatch.StateObserving, h.tracker.State())
		})
	}
}

func TestTransition_NoMatchingBreakpoint(t *testing.T) {
	cfg := widgetwatch.Config{
		WidgetID: "w1",
		Items:    itemIDs(8),
		Breakpoints: []layout.Layout{
			{MinWidth: 400, Rows: 3, Columns: 2},
			{MinWidth: 768, Rows: 2, Columns: 4},
		},
	}
	h := newHarness(t, cfg, 500, 800)
	h.vp.SetList(1000, 600)
	require.NoError(t, h.tracker.Init(context.Background()))

	h.vp.Resize(300, 800)
	h.clock.Advance(time.Second)

	assert.Equal(t, []string{"failed"}, h.metrics.decisions)
	assert.Contains(t, h.logs.String(), "widget observer configuration failed")
	l, _ := h.tracker.Layout()
	assert.Equal(t, 400, l.MinWidth)

	// Growing back recovers without a new observation.
	h.vp.Resize(500, 800)
	h.clock.Advance(time.Second)
	assert.Equal(t, widgetwatch.StateObserving, h.tracker.State())
	h.vp.ScrollTo(1000)
	assert.Len(t, h.tracker.Events(), 7)
}

func TestTransition_ListRemovedThenRestored(t *testing.T) {
	h := newHarness(t, responsiveConfig(), 500, 800)
	h.vp.SetList(1000, 600)
	require.NoError(t, h.tracker.Init(context.Background()))

	h.vp.RemoveList()
	h.vp.Resize(1024, 800)
	h.clock.Advance(time.Second)
	assert.Equal(t, []string{"failed"}, h.metrics.decisions)
	assert.Equal(t, visibility.Mode(""), h.tracker.Mode())

	// The list comes back and a later resize re-resolves the layout.
	h.vp.SetList(1000, 600)
	h.vp.Resize(500, 800)
	h.clock.Advance(time.Second)
	assert.Equal(t, []string{"failed", "reobserved"}, h.metrics.decisions)

	h.vp.Notify()
	h.vp.ScrollTo(1000)
	assert.Len(t, h.tracker.Events(), 7)
}

func TestTransition_RetriesWithinSameBreakpoint(t *testing.T) {
	h := newHarness(t, responsiveConfig(), 500, 800)
	h.vp.SetList(1000, 600)
	require.NoError(t, h.tracker.Init(context.Background()))

	h.vp.RemoveList()
	h.vp.Resize(1024, 800)
	h.clock.Advance(time.Second)
	require.Equal(t, []string{"failed"}, h.metrics.decisions)

	// Still no list: the retry fails again instead of going silent.
	h.vp.Resize(1050, 800)
	h.clock.Advance(time.Second)
	assert.Equal(t, []string{"failed", "failed"}, h.metrics.decisions)

	h.vp.SetList(1000, 600)
	h.vp.Resize(1100, 800)
	h.clock.Advance(time.Second)
	assert.Equal(t, []string{"failed", "failed", "reobserved"}, h.metrics.decisions)
	assert.Equal(t, visibility.ModeRatio, h.tracker.Mode())

	l, _ := h.tracker.Layout()
	assert.Equal(t, 768, l.MinWidth)

	h.vp.Notify()
	h.vp.ScrollTo(1000)
	h.flush()

	assert.Len(t, h.tracker.Events(), 9, "widget and both wide rows")
	assert.Equal(t, widgetwatch.StateTerminal, h.tracker.State())
}
