package layout

import "math"

// rowMidpoint places a row's threshold at the middle of its own height band.
const rowMidpoint = 0.5

// Row is one rendered row of the widget grid.
type Row struct {
	// Number is 1-based, top to bottom.
	Number int

	// Threshold is the intersection ratio (0..1) at which the row counts as
	// seen. It is scaled down for lists taller than the viewport.
	Threshold float64

	// Percent is the un-scaled cumulative percent of list height at which the
	// row counts as seen. Scroll geometry compares against this value.
	Percent float64

	// ItemIDs is the contiguous slice of items rendered in this row.
	ItemIDs []string
}

// ComputeRows splits items into rows and computes each row's threshold.
//
// Percentages are floored, which biases thresholds slightly low. When the
// list is taller than the viewport, thresholds are multiplied by
// viewportHeight/listHeight so that they stay reachable by an intersection
// ratio measured against the whole list.
//
// It returns nil when listHeight <= 0 or the grid has no rows or columns.
func ComputeRows(listHeight, viewportHeight float64, rows, columns int, spacing float64, items []string) []Row {
	if listHeight <= 0 || rows <= 0 || columns <= 0 {
		return nil
	}

	spacingPercent := math.Floor(spacing / listHeight * 100)
	rowPercent := math.Floor((100 - spacingPercent*float64(rows-1)) / float64(rows))

	coef := 1.0
	if viewportHeight <= listHeight {
		coef = viewportHeight / listHeight
	}

	out := make([]Row, 0, rows)
	for i := 0; i < rows; i++ {
		percent := rowPercent*rowMidpoint + rowPercent*float64(i) + spacingPercent*float64(i)
		out = append(out, Row{
			Number:    i + 1,
			Threshold: percent / 100 * coef,
			Percent:   percent,
			ItemIDs:   sliceRow(items, i, columns),
		})
	}
	return out
}

func sliceRow(items []string, row, columns int) []string {
	start := row * columns
	if start >= len(items) {
		return []string{}
	}
	end := start + columns
	if end > len(items) {
		end = len(items)
	}
	ids := make([]string, end-start)
	copy(ids, items[start:end])
	return ids
}
