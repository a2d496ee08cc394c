package layout_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/layout"
)

func itemIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("item-%d", i+1)
	}
	return ids
}

func TestComputeRows_Coverage(t *testing.T) {
	items := itemIDs(10)
	rows := layout.ComputeRows(600, 1000, 3, 4, 20, items)
	require.Len(t, rows, 3)

	sizes := []int{len(rows[0].ItemIDs), len(rows[1].ItemIDs), len(rows[2].ItemIDs)}
	assert.Equal(t, []int{4, 4, 2}, sizes)

	var union []string
	for i, r := range rows {
		assert.Equal(t, i+1, r.Number)
		if i > 0 {
			assert.Greater(t, r.Threshold, rows[i-1].Threshold)
			assert.Greater(t, r.Percent, rows[i-1].Percent)
		}
		union = append(union, r.ItemIDs...)
	}
	assert.Equal(t, items, union)
}

func TestComputeRows_Thresholds(t *testing.T) {
	// spacing 20/600 -> 3%; row height floor(94/3) = 31%.
	rows := layout.ComputeRows(600, 1000, 3, 4, 20, itemIDs(12))
	require.Len(t, rows, 3)

	assert.InDelta(t, 15.5, rows[0].Percent, 1e-9)
	assert.InDelta(t, 49.5, rows[1].Percent, 1e-9)
	assert.InDelta(t, 83.5, rows[2].Percent, 1e-9)

	// Viewport taller than the list: thresholds are not scaled.
	assert.InDelta(t, 0.155, rows[0].Threshold, 1e-9)
	assert.InDelta(t, 0.835, rows[2].Threshold, 1e-9)
}

func TestComputeRows_FloorsPercentages(t *testing.T) {
	// spacing 10/700 = 1.43% -> 1; rows floor((100-2)/3) = 32.
	rows := layout.ComputeRows(700, 1000, 3, 1, 10, itemIDs(3))
	require.Len(t, rows, 3)

	assert.InDelta(t, 16.0, rows[0].Percent, 1e-9)
	assert.InDelta(t, 16.0+32+1, rows[1].Percent, 1e-9)
	assert.InDelta(t, 16.0+64+2, rows[2].Percent, 1e-9)
}

func TestComputeRows_ScalesForTallList(t *testing.T) {
	rows := layout.ComputeRows(1000, 300, 2, 2, 0, itemIDs(4))
	require.Len(t, rows, 2)

	// 25% and 75% of the list, scaled by 300/1000.
	assert.InDelta(t, 25.0, rows[0].Percent, 1e-9)
	assert.InDelta(t, 0.25*0.3, rows[0].Threshold, 1e-9)
	assert.InDelta(t, 0.75*0.3, rows[1].Threshold, 1e-9)
}

func TestComputeRows_Degenerate(t *testing.T) {
	tests := []struct {
		name       string
		listHeight float64
		rows, cols int
	}{
		{"zero height", 0, 2, 2},
		{"negative height", -10, 2, 2},
		{"no rows", 500, 0, 2},
		{"no columns", 500, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, layout.ComputeRows(tt.listHeight, 800, tt.rows, tt.cols, 0, itemIDs(4)))
		})
	}
}

func TestComputeRows_MoreRowsThanItems(t *testing.T) {
	rows := layout.ComputeRows(400, 800, 3, 2, 0, itemIDs(3))
	require.Len(t, rows, 3)

	assert.Len(t, rows[0].ItemIDs, 2)
	assert.Len(t, rows[1].ItemIDs, 1)
	assert.Empty(t, rows[2].ItemIDs)
}

func TestComputeRows_DoesNotAliasItems(t *testing.T) {
	items := itemIDs(4)
	rows := layout.ComputeRows(400, 800, 2, 2, 0, items)
	rows[0].ItemIDs[0] = "changed"

	assert.Equal(t, "item-1", items[0])
}
