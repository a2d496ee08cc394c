package widgetwatch

import (
	"fmt"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/config"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/dispatch"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/layout"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/visibility"
)

// Config describes one widget. Exactly one of Breakpoints or RowsCount
// (with ColumnsCount and RowsIndents) is set: the first selects
// multi-breakpoint mode, the second a single fixed grid.
type Config struct {
	// Items are the rendered item ids in display order.
	Items []string

	// WidgetID identifies the widget in every batch.
	WidgetID string

	// Breakpoints are the responsive layouts. Order does not matter.
	Breakpoints []layout.Layout

	RowsCount    int
	ColumnsCount int
	RowsIndents  float64
}

// multi reports whether the widget uses responsive breakpoints.
func (c Config) multi() bool {
	return c.Breakpoints != nil
}

// validate checks the mode selection and returns the layouts to resolve
// against.
func (c Config) validate() ([]layout.Layout, error) {
	if c.WidgetID == "" {
		return nil, fmt.Errorf("%w: widget id is required", ErrInvalidConfig)
	}
	if c.multi() {
		if c.RowsCount != 0 || c.ColumnsCount != 0 {
			return nil, fmt.Errorf("%w: breakpoints and rows count are mutually exclusive", ErrInvalidConfig)
		}
		if len(c.Breakpoints) == 0 {
			return nil, ErrNoBreakpoints
		}
		for _, l := range c.Breakpoints {
			if l.Rows < 1 || l.Columns < 1 {
				return nil, fmt.Errorf("%w: breakpoint at width %d has an empty grid", ErrInvalidConfig, l.MinWidth)
			}
		}
		out := make([]layout.Layout, len(c.Breakpoints))
		copy(out, c.Breakpoints)
		return out, nil
	}
	if c.RowsCount < 1 || c.ColumnsCount < 1 {
		return nil, fmt.Errorf("%w: rows and columns count are required", ErrInvalidConfig)
	}
	return []layout.Layout{{
		MaxWidth:   layout.Unbounded,
		Rows:       c.RowsCount,
		Columns:    c.ColumnsCount,
		RowSpacing: c.RowsIndents,
	}}, nil
}

// FromWidgetFile converts a decoded widget file into a Config and the
// options its tuning block asks for.
func FromWidgetFile(wf *config.WidgetFile) (Config, []Option, error) {
	cfg := Config{
		Items:    append([]string(nil), wf.Items...),
		WidgetID: wf.WidgetID,
	}
	if len(wf.Breakpoints) > 0 {
		cfg.Breakpoints = wf.Layouts()
	} else {
		cfg.RowsCount = wf.RowsCount
		cfg.ColumnsCount = wf.Columns
		cfg.RowsIndents = wf.RowsIndents
	}

	tuning := wf.Tuning()
	policy, err := ParseReobservePolicy(tuning.String(config.KeyReobservePolicy, ""))
	if err != nil {
		return Config{}, nil, err
	}

	opts := []Option{
		WithDispatchInterval(tuning.Duration(config.KeyDispatchInterval, dispatch.DefaultDispatchInterval)),
		WithResizeInterval(tuning.Duration(config.KeyResizeInterval, dispatch.DefaultResizeInterval)),
		WithTallListRatio(tuning.Float(config.KeyTallListRatio, visibility.DefaultTallListRatio)),
		WithReobservePolicy(policy),
	}
	return cfg, opts, nil
}
