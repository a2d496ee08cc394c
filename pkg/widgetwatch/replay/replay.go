package replay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	widgetwatch "github.com/randalmurphal/widgetwatch/pkg/widgetwatch"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/clock"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/ledger"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/sim"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/sink"
)

// Epoch is the simulated time at which every replay starts.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Result is the outcome of a replay.
type Result struct {
	// Batches are every batch the tracker sent, including the final flush.
	Batches []sink.Batch

	// State is the tracker state after the last step, before unmount.
	State widgetwatch.State

	// Events is the ledger after the last step, before unmount.
	Events []ledger.Event

	// Elapsed is the simulated time the trace covered.
	Elapsed time.Duration
}

// teeSink records batches and forwards them.
type teeSink struct {
	mu      sync.Mutex
	next    sink.Sink
	batches []sink.Batch
}

func (s *teeSink) Send(ctx context.Context, b sink.Batch) error {
	s.mu.Lock()
	s.batches = append(s.batches, b)
	s.mu.Unlock()
	if s.next == nil {
		return nil
	}
	return s.next.Send(ctx, b)
}

// Runner replays traces for one widget configuration.
type Runner struct {
	cfg    widgetwatch.Config
	opts   []widgetwatch.Option
	sink   sink.Sink
	logger *slog.Logger
}

// NewRunner creates a runner. Batches are forwarded to s, which may be nil.
// opts are applied to every tracker; the clock and click source are always
// simulated.
func NewRunner(cfg widgetwatch.Config, s sink.Sink, logger *slog.Logger, opts ...widgetwatch.Option) *Runner {
	return &Runner{cfg: cfg, opts: opts, sink: s, logger: logger}
}

// Run mounts a tracker, applies every step and unmounts it. An Init
// failure is returned as is; the result is nil in that case.
func (r *Runner) Run(ctx context.Context, tr *Trace) (*Result, error) {
	vp := sim.NewViewport(tr.Viewport.Width, tr.Viewport.Height)
	if tr.List != nil {
		vp.SetList(tr.List.Top, tr.List.Height)
	}
	clk := clock.NewManual(Epoch)
	clicks := sim.NewClicks()
	tee := &teeSink{next: r.sink}

	opts := append([]widgetwatch.Option{widgetwatch.WithLogger(r.logger)}, r.opts...)
	opts = append(opts, widgetwatch.WithClock(clk), widgetwatch.WithClickSource(clicks))
	tracker := widgetwatch.New(r.cfg, vp, tee, opts...)

	if err := tracker.Init(ctx); err != nil {
		tracker.Destroy()
		return nil, err
	}

	for i, step := range tr.Steps {
		if err := ctx.Err(); err != nil {
			tracker.Destroy()
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		r.apply(vp, clk, clicks, step)
		if r.logger != nil {
			r.logger.Debug("replay step",
				slog.Int("step", i),
				slog.String("action", step.Action()),
				slog.String("state", tracker.State().String()),
			)
		}
	}

	res := &Result{
		State:   tracker.State(),
		Events:  tracker.Events(),
		Elapsed: clk.Now().Sub(Epoch),
	}
	tracker.Destroy()

	tee.mu.Lock()
	res.Batches = append([]sink.Batch(nil), tee.batches...)
	tee.mu.Unlock()
	return res, nil
}

func (r *Runner) apply(vp *sim.Viewport, clk *clock.Manual, clicks *sim.Clicks, s Step) {
	switch s.Action() {
	case "scroll":
		vp.ScrollTo(*s.Scroll)
	case "resize":
		vp.Resize(s.Resize.Width, s.Resize.Height)
	case "click":
		clicks.Click(sim.ItemChild(s.Click))
	case "advance":
		clk.Advance(s.Advance)
	case "list":
		vp.SetList(s.List.Top, s.List.Height)
		vp.Notify()
	case "remove_list":
		vp.RemoveList()
	case "notify":
		vp.Notify()
	}
}
