package widgetwatch_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	widgetwatch "github.com/randalmurphal/widgetwatch/pkg/widgetwatch"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/clock"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/ledger"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/sim"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/sink"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// recordingSink keeps every batch it receives.
type recordingSink struct {
	mu      sync.Mutex
	batches []sink.Batch
	err     error
}

func (s *recordingSink) Send(_ context.Context, b sink.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, b)
	return s.err
}

func (s *recordingSink) Batches() []sink.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sink.Batch(nil), s.batches...)
}

// countingMetrics counts recorder calls.
type countingMetrics struct {
	mu        sync.Mutex
	events    map[string]int
	batches   int
	decisions []string
	anomalies int
	terminal  int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{events: make(map[string]int)}
}

func (m *countingMetrics) RecordEvents(_ context.Context, kind string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[kind] += n
}

func (m *countingMetrics) RecordBatch(_ context.Context, _ int, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
}

func (m *countingMetrics) RecordBreakpointChange(_ context.Context, decision string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, decision)
}

func (m *countingMetrics) RecordAnomaly(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anomalies++
}

func (m *countingMetrics) RecordTerminal(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminal++
}

// harness wires a tracker to a simulated window, a manual clock and a
// recording sink.
type harness struct {
	vp      *sim.Viewport
	clock   *clock.Manual
	sink    *recordingSink
	clicks  *sim.Clicks
	metrics *countingMetrics
	logs    *bytes.Buffer
	tracker *widgetwatch.Tracker
}

func newHarness(t *testing.T, cfg widgetwatch.Config, width, height int, opts ...widgetwatch.Option) *harness {
	t.Helper()
	h := &harness{
		vp:      sim.NewViewport(width, height),
		clock:   clock.NewManual(epoch),
		sink:    &recordingSink{},
		clicks:  sim.NewClicks(),
		metrics: newCountingMetrics(),
		logs:    &bytes.Buffer{},
	}
	logger := slog.New(slog.NewJSONHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	base := []widgetwatch.Option{
		widgetwatch.WithClock(h.clock),
		widgetwatch.WithClickSource(h.clicks),
		widgetwatch.WithMetricsRecorder(h.metrics),
		widgetwatch.WithLogger(logger),
	}
	h.tracker = widgetwatch.New(cfg, h.vp, h.sink, append(base, opts...)...)
	t.Cleanup(h.tracker.Destroy)
	return h
}

// flush advances past the dispatch window.
func (h *harness) flush() {
	h.clock.Advance(2 * time.Second)
}

func itemIDs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func shown(ids ...string) []sink.EventPayload {
	out := make([]sink.EventPayload, len(ids))
	for i, id := range ids {
		out[i] = sink.EventPayload{Type: "i_show", ItemID: id}
	}
	return out
}

func widgetShown() sink.EventPayload {
	return sink.EventPayload{Type: "w_show"}
}

// keys returns the ledger keys in insertion order.
func keys(events []ledger.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Key.String()
	}
	return out
}
