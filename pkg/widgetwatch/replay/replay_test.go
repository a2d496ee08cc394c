package replay_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	widgetwatch "github.com/randalmurphal/widgetwatch/pkg/widgetwatch"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/layout"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/replay"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/sink"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/store"
)

const sessionTrace = `
viewport: {width: 500, height: 800}
list: {top: 1000, height: 600}
steps:
  - notify: true
  - scroll: 400
  - click: a
  - advance: 2s
  - scroll: 1000
  - advance: 2s
  - resize: {width: 1024, height: 800}
  - advance: 500ms
  - notify: true
  - advance: 2s
`

func responsive() widgetwatch.Config {
	return widgetwatch.Config{
		WidgetID: "recs",
		Items:    []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		Breakpoints: []layout.Layout{
			{MinWidth: 0, Rows: 3, Columns: 2},
			{MinWidth: 768, Rows: 2, Columns: 4},
		},
	}
}

func TestParseTrace(t *testing.T) {
	tr, err := replay.ParseTrace([]byte(sessionTrace))
	require.NoError(t, err)

	assert.Equal(t, replay.Size{Width: 500, Height: 800}, tr.Viewport)
	require.NotNil(t, tr.List)
	assert.Equal(t, 600.0, tr.List.Height)
	require.Len(t, tr.Steps, 10)

	actions := make([]string, len(tr.Steps))
	for i, s := range tr.Steps {
		actions[i] = s.Action()
	}
	assert.Equal(t, []string{
		"notify", "scroll", "click", "advance", "scroll", "advance", "resize", "advance", "notify", "advance",
	}, actions)
	assert.Equal(t, 500*time.Millisecond, tr.Steps[7].Advance)
}

func TestParseTrace_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{"missing viewport", "steps: []", "Viewport"},
		{"zero width", "viewport: {width: 0, height: 800}", "Width"},
		{"empty step", "viewport: {width: 1, height: 1}\nsteps:\n  - {}", "no action"},
		{"two actions", "viewport: {width: 1, height: 1}\nsteps:\n  - {scroll: 1, notify: true}", "more than one"},
		{"negative list", "viewport: {width: 1, height: 1}\nlist: {top: 0, height: -5}", "Height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := replay.ParseTrace([]byte(tt.data))
			require.ErrorIs(t, err, replay.ErrInvalidTrace)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseTrace_BadYAML(t *testing.T) {
	_, err := replay.ParseTrace([]byte("viewport: ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse trace")
}

func TestLoadTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sessionTrace), 0o600))

	tr, err := replay.LoadTrace(path)
	require.NoError(t, err)
	assert.Len(t, tr.Steps, 10)

	_, err = replay.LoadTrace(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunner_Session(t *testing.T) {
	tr, err := replay.ParseTrace([]byte(sessionTrace))
	require.NoError(t, err)

	var out bytes.Buffer
	r := replay.NewRunner(responsive(), sink.NewLogSink(nil, &out), nil,
		widgetwatch.WithBatchIDs(func() string { return "batch" }))

	res, err := r.Run(context.Background(), tr)
	require.NoError(t, err)

	require.Len(t, res.Batches, 3)
	assert.Equal(t, []sink.EventPayload{
		{Type: "w_show"},
		{Type: "i_show", ItemID: "a"},
		{Type: "i_show", ItemID: "b"},
		{Type: "i_click", ItemID: "a"},
	}, res.Batches[0].Events)
	assert.Len(t, res.Batches[1].Events, 4, "c through f")
	assert.Equal(t, []sink.EventPayload{
		{Type: "i_show", ItemID: "g"},
		{Type: "i_show", ItemID: "h"},
	}, res.Batches[2].Events)

	assert.Equal(t, widgetwatch.StateTerminal, res.State)
	assert.Len(t, res.Events, 10)
	assert.Equal(t, 6500*time.Millisecond, res.Elapsed)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	b, err := sink.UnmarshalBatch([]byte(lines[2]))
	require.NoError(t, err)
	assert.Equal(t, "recs", b.WidgetID)
	assert.Equal(t, "batch", b.ID)
}

func TestRunner_UnmountFlushes(t *testing.T) {
	tr, err := replay.ParseTrace([]byte(`
viewport: {width: 500, height: 800}
list: {top: 0, height: 600}
steps:
  - notify: true
`))
	require.NoError(t, err)

	res, err := replay.NewRunner(responsive(), nil, nil).Run(context.Background(), tr)
	require.NoError(t, err)

	assert.Equal(t, widgetwatch.StateObserving, res.State)
	require.Len(t, res.Batches, 1)
	assert.Len(t, res.Batches[0].Events, 7)
	assert.Zero(t, res.Elapsed)
}

func TestRunner_InitError(t *testing.T) {
	tr, err := replay.ParseTrace([]byte("viewport: {width: 500, height: 800}"))
	require.NoError(t, err)

	_, err = replay.NewRunner(responsive(), nil, nil).Run(context.Background(), tr)
	assert.ErrorIs(t, err, widgetwatch.ErrNoListAnchor)
}

func TestRunner_Cancelled(t *testing.T) {
	tr, err := replay.ParseTrace([]byte(sessionTrace))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = replay.NewRunner(responsive(), nil, nil).Run(ctx, tr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_SnapshotAcrossRuns(t *testing.T) {
	tr, err := replay.ParseTrace([]byte(sessionTrace))
	require.NoError(t, err)

	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer st.Close()

	r := replay.NewRunner(responsive(), nil, nil, widgetwatch.WithSnapshotStore(st))
	first, err := r.Run(context.Background(), tr)
	require.NoError(t, err)
	assert.Len(t, first.Batches, 3)

	// Everything was delivered, so only the click is sent again.
	second, err := r.Run(context.Background(), tr)
	require.NoError(t, err)
	require.Len(t, second.Batches, 1)
	assert.Equal(t, []sink.EventPayload{{Type: "i_click", ItemID: "a"}}, second.Batches[0].Events)
	assert.Equal(t, widgetwatch.StateTerminal, second.State)
}
