package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/layout"
)

func testLayouts() []layout.Layout {
	// Deliberately unsorted.
	return []layout.Layout{
		{MinWidth: 1024, Rows: 2, Columns: 4, RowSpacing: 16},
		{MinWidth: 0, Rows: 4, Columns: 1, RowSpacing: 8},
		{MinWidth: 768, Rows: 3, Columns: 2, RowSpacing: 12},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		wantMin int
		wantMax int
	}{
		{"smallest", 320, 0, 767},
		{"lower edge of tablet", 768, 768, 1023},
		{"upper edge of tablet", 1023, 768, 1023},
		{"desktop", 1024, 1024, layout.Unbounded},
		{"very wide", 100000, 1024, layout.Unbounded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := layout.Resolve(testLayouts(), tt.width)
			require.True(t, ok)
			assert.Equal(t, tt.wantMin, got.MinWidth)
			assert.Equal(t, tt.wantMax, got.MaxWidth)
		})
	}
}

func TestResolve_Empty(t *testing.T) {
	_, ok := layout.Resolve(nil, 500)
	assert.False(t, ok)
}

func TestResolve_Single(t *testing.T) {
	single := []layout.Layout{{MinWidth: 900, Rows: 2, Columns: 3}}

	// A lone layout applies at every width, even below its lower bound.
	got, ok := layout.Resolve(single, 10)
	require.True(t, ok)
	assert.Equal(t, 900, got.MinWidth)
	assert.Equal(t, 6, got.Capacity())
}

func TestResolve_NoMatch(t *testing.T) {
	layouts := []layout.Layout{
		{MinWidth: 500, Rows: 1, Columns: 1},
		{MinWidth: 900, Rows: 1, Columns: 2},
	}

	_, ok := layout.Resolve(layouts, 499)
	assert.False(t, ok)
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	layouts := testLayouts()
	_, _ = layout.Resolve(layouts, 800)

	assert.Equal(t, 1024, layouts[0].MinWidth)
	assert.Equal(t, 0, layouts[0].MaxWidth)
}

func TestResolve_ComparedByValue(t *testing.T) {
	a, ok := layout.Resolve(testLayouts(), 800)
	require.True(t, ok)
	b, ok := layout.Resolve(testLayouts(), 900)
	require.True(t, ok)
	c, ok := layout.Resolve(testLayouts(), 1200)
	require.True(t, ok)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestPartition_CoversWidthAxis(t *testing.T) {
	parts := layout.Partition(testLayouts())
	require.Len(t, parts, 3)

	for i := 0; i < len(parts)-1; i++ {
		assert.Equal(t, parts[i+1].MinWidth-1, parts[i].MaxWidth, "gap or overlap after layout %d", i)
		assert.LessOrEqual(t, parts[i].MinWidth, parts[i].MaxWidth)
	}
	assert.Equal(t, layout.Unbounded, parts[len(parts)-1].MaxWidth)

	// Every width from the smallest lower bound upward resolves to exactly one layout.
	for width := 0; width <= 2048; width++ {
		matches := 0
		for _, p := range parts {
			if p.Contains(width) {
				matches++
			}
		}
		require.Equal(t, 1, matches, "width %d", width)

		_, ok := layout.Resolve(testLayouts(), width)
		require.True(t, ok, "width %d", width)
	}
}

func TestMostPermissive(t *testing.T) {
	got, ok := layout.MostPermissive(testLayouts())
	require.True(t, ok)
	assert.Equal(t, 1024, got.MinWidth)
	assert.Equal(t, 8, got.Capacity())

	_, ok = layout.MostPermissive(nil)
	assert.False(t, ok)
}
