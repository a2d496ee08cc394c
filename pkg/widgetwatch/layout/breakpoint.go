// Package layout maps responsive breakpoints and grid geometry to the rows
// a widget is rendered in, and to the visibility threshold of each row.
package layout

import (
	"math"
	"sort"
)

// Unbounded is the upper width bound of the widest breakpoint.
const Unbounded = math.MaxInt

// Layout is one responsive breakpoint: a width range and the grid rendered in it.
//
// MinWidth is supplied by configuration. MaxWidth is derived by Partition and
// is zero on layouts that have not been partitioned.
type Layout struct {
	MinWidth   int     `json:"width" yaml:"width"`
	MaxWidth   int     `json:"-" yaml:"-"`
	Rows       int     `json:"rows_count" yaml:"rows_count"`
	Columns    int     `json:"columns_count" yaml:"columns_count"`
	RowSpacing float64 `json:"rows_indents" yaml:"rows_indents"`
}

// Capacity returns the number of items the grid can display.
func (l Layout) Capacity() int {
	return l.Rows * l.Columns
}

// Contains reports whether width falls inside [MinWidth, MaxWidth].
func (l Layout) Contains(width int) bool {
	return l.MinWidth <= width && width <= l.MaxWidth
}

// Partition returns a sorted copy of layouts with MaxWidth filled in so the
// ranges cover [min(MinWidth), Unbounded] without gaps or overlap.
// The caller's slice is not modified.
func Partition(layouts []Layout) []Layout {
	out := make([]Layout, len(layouts))
	copy(out, layouts)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinWidth < out[j].MinWidth
	})

	for i := range out {
		if i == len(out)-1 {
			out[i].MaxWidth = Unbounded
			continue
		}
		out[i].MaxWidth = out[i+1].MinWidth - 1
	}
	return out
}

// Resolve selects the layout active at width.
//
// It returns false when layouts is empty or no range contains width. A single
// layout is returned as-is regardless of width.
func Resolve(layouts []Layout, width int) (Layout, bool) {
	switch len(layouts) {
	case 0:
		return Layout{}, false
	case 1:
		l := layouts[0]
		if l.MaxWidth == 0 {
			l.MaxWidth = Unbounded
		}
		return l, true
	}

	for _, l := range Partition(layouts) {
		if l.Contains(width) {
			return l, true
		}
	}
	return Layout{}, false
}

// MostPermissive returns the layout with the largest capacity.
// Ties go to the wider breakpoint.
func MostPermissive(layouts []Layout) (Layout, bool) {
	if len(layouts) == 0 {
		return Layout{}, false
	}
	parts := Partition(layouts)
	best := parts[0]
	for _, l := range parts[1:] {
		if l.Capacity() >= best.Capacity() {
			best = l
		}
	}
	return best, true
}
