package widgetwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/dispatch"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/layout"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/ledger"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/observability"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/sink"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/store"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/visibility"
)

// State is the lifecycle state of a Tracker.
type State int

const (
	// StateIdle is a constructed tracker before Init.
	StateIdle State = iota

	// StateObserving is an initialized tracker receiving signals.
	StateObserving

	// StateTerminal means every possible shown event was delivered.
	// Observation is torn down; clicks are still recorded.
	StateTerminal

	// StateFailed means Init hit a configuration error.
	StateFailed

	// StateDestroyed is an inert tracker.
	StateDestroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateObserving:
		return "observing"
	case StateTerminal:
		return "terminal"
	case StateFailed:
		return "failed"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Tracker tracks impressions and clicks for one widget.
//
// All entry points (viewport callbacks, timers, clicks, Init, Destroy) are
// serialized by one mutex, so each callback applies its ledger changes
// atomically. The viewport, click source and sink must not call back into
// the tracker synchronously.
type Tracker struct {
	cfg  Config
	opts options

	mu     sync.Mutex
	ctx    context.Context
	state  State
	logger *slog.Logger

	vp     visibility.Viewport
	sink   sink.Sink
	ledger *ledger.Ledger

	layouts    []layout.Layout
	current    layout.Layout
	rows       []layout.Row
	dispatcher *dispatch.Dispatcher

	strategy    visibility.Strategy
	strategySub visibility.Subscription
	strategyGen uint64

	flushThrottle  *dispatch.Throttle
	resizeThrottle *dispatch.Throttle
	resizeSub      visibility.Subscription
	clickSub       Subscription
}

// New creates a tracker. Nothing is observed until Init.
func New(cfg Config, vp visibility.Viewport, s sink.Sink, opts ...Option) *Tracker {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cfg.Items = append([]string(nil), cfg.Items...)

	return &Tracker{
		cfg:    cfg,
		opts:   o,
		ctx:    context.Background(),
		logger: o.logger,
		vp:     vp,
		sink:   s,
		ledger: ledger.New(),
	}
}

// Init resolves the layout, measures the list and starts observing.
//
// Init is idempotent. A configuration problem is logged, leaves the tracker
// in StateFailed and is returned as a *ConfigurationError; it never panics.
// A failed tracker may be initialized again.
func (t *Tracker) Init(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateIdle && t.state != StateFailed {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	t.ctx = context.WithoutCancel(ctx)

	if err := t.init(); err != nil {
		t.state = StateFailed
		cerr := &ConfigurationError{Op: "init", WidgetID: t.cfg.WidgetID, Err: err}
		observability.LogConfigError(t.logger, t.cfg.WidgetID, cerr)
		return cerr
	}
	return nil
}

func (t *Tracker) init() error {
	layouts, err := t.cfg.validate()
	if err != nil {
		return err
	}
	if t.vp == nil {
		return ErrNoViewport
	}
	if t.sink == nil {
		return fmt.Errorf("%w: no sink", ErrInvalidConfig)
	}

	width, height := t.vp.Size()
	current, ok := layout.Resolve(layouts, width)
	if !ok {
		return ErrNoMatchingBreakpoint
	}
	t.layouts = layouts
	t.current = current

	t.restoreSnapshot()

	widest, _ := layout.MostPermissive(layouts)
	terminalItems := min(len(t.cfg.Items), widest.Capacity())

	dopts := []dispatch.Option{
		dispatch.WithLogger(t.logger),
		dispatch.WithMetrics(t.opts.metrics),
		dispatch.WithSpans(t.opts.spans),
	}
	if t.opts.batchIDs != nil {
		dopts = append(dopts, dispatch.WithBatchIDs(t.opts.batchIDs))
	}
	t.dispatcher = dispatch.New(t.cfg.WidgetID, t.ledger, t.sink, terminalItems, dopts...)
	t.flushThrottle = dispatch.NewThrottle(t.opts.clock, t.opts.dispatchInterval, t.onFlushTimer)

	if t.dispatcher.Complete() {
		// Everything was delivered by an earlier mount.
		t.state = StateTerminal
		t.subscribeClicks()
		observability.LogTerminal(t.logger, t.cfg.WidgetID, t.ledger.Len())
		return nil
	}

	if err := t.observe(current, height); err != nil {
		t.flushThrottle.Stop()
		return err
	}

	if t.cfg.multi() {
		t.resizeThrottle = dispatch.NewThrottle(t.opts.clock, t.opts.resizeInterval, t.onResizeTimer)
		t.resizeSub = t.vp.OnResize(func() { t.resizeThrottle.Trigger() })
	}
	t.subscribeClicks()
	t.state = StateObserving
	return nil
}

func (t *Tracker) subscribeClicks() {
	if t.opts.clicks != nil && t.clickSub == nil {
		t.clickSub = t.opts.clicks.OnClick(t.onClick)
	}
}

// observe measures the list, computes rows for l and attaches a new
// strategy. For scroll geometry it evaluates once immediately.
func (t *Tracker) observe(l layout.Layout, viewportHeight int) error {
	rect, ok := t.vp.ListRect()
	if !ok {
		return ErrNoListAnchor
	}
	if rect.Height <= 0 {
		return ErrZeroListHeight
	}

	t.rows = layout.ComputeRows(rect.Height, float64(viewportHeight), l.Rows, l.Columns, l.RowSpacing, t.cfg.Items)
	strategy := visibility.Select(visibility.Params{
		Rows:           t.rows,
		ListHeight:     rect.Height,
		ViewportHeight: float64(viewportHeight),
		TallListRatio:  t.opts.tallListRatio,
		WidgetShown:    t.ledger.Has(ledger.WidgetShown, t.cfg.WidgetID),
		ItemShown: func(id string) bool {
			return t.ledger.Has(ledger.ItemShown, id)
		},
	})

	t.strategyGen++
	gen := t.strategyGen
	sub, err := strategy.Observe(t.vp, func(sig visibility.Signal) { t.onSignal(gen, sig) })
	if err != nil {
		return err
	}
	t.strategy = strategy
	t.strategySub = sub
	t.logger = observability.EnrichLogger(t.opts.logger, t.cfg.WidgetID, string(strategy.Mode()))
	observability.LogInit(t.logger, t.cfg.WidgetID, string(strategy.Mode()), len(t.rows))

	if strategy.Mode() == visibility.ModeScroll {
		t.apply(strategy.Evaluate(visibility.Signal{Kind: visibility.SignalScroll}))
	}
	return nil
}

// releaseStrategy stops the current strategy's notifications. Signals
// already in flight for it are dropped by generation.
func (t *Tracker) releaseStrategy() {
	if t.strategySub != nil {
		t.strategySub.Unsubscribe()
		t.strategySub = nil
	}
	t.strategy = nil
	t.strategyGen++
}

// onSignal handles one viewport notification for strategy generation gen.
func (t *Tracker) onSignal(gen uint64, sig visibility.Signal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateObserving || gen != t.strategyGen || t.strategy == nil {
		return
	}
	res := t.strategy.Evaluate(sig)
	if res.Anomaly {
		t.opts.metrics.RecordAnomaly(t.ctx)
		observability.LogSignalAnomaly(t.logger, t.cfg.WidgetID, sig.Entry.IsIntersecting, sig.Entry.Ratio)
		return
	}
	t.apply(res)
}

// apply records what a signal revealed and schedules a flush when anything
// new was recorded.
func (t *Tracker) apply(res visibility.Result) {
	created := 0
	if res.WidgetShown && t.ledger.RecordShown(ledger.WidgetShown, t.cfg.WidgetID) {
		created++
		t.opts.metrics.RecordEvents(t.ctx, ledger.WidgetShown.String(), 1)
	}
	items := 0
	for _, id := range res.ItemIDs {
		if t.ledger.RecordShown(ledger.ItemShown, id) {
			items++
		}
	}
	if items > 0 {
		t.opts.metrics.RecordEvents(t.ctx, ledger.ItemShown.String(), items)
		observability.LogRowsSeen(t.logger, t.cfg.WidgetID, res.Fraction, items)
	}
	created += items

	if created > 0 {
		t.flushThrottle.Trigger()
	}

	// Every row of this layout is seen. A later breakpoint may need more,
	// so only the ratio observation goes; scroll and resize stay.
	if t.strategy != nil && t.strategy.Mode() == visibility.ModeRatio && t.strategy.Done() && t.strategySub != nil {
		t.strategySub.Unsubscribe()
		t.strategySub = nil
		observability.LogObservationReleased(t.logger, t.cfg.WidgetID)
	}
}

// onFlushTimer runs at the trailing edge of the dispatch throttle.
func (t *Tracker) onFlushTimer() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateObserving && t.state != StateTerminal {
		return
	}
	t.flush()
}

// flush sends pending events and enters the terminal state once the
// widget has nothing left to report.
func (t *Tracker) flush() dispatch.Report {
	report := t.dispatcher.Flush(t.ctx)
	if report.Sent > 0 {
		t.saveSnapshot()
	}
	if report.Complete && t.state == StateObserving {
		t.terminate()
	}
	return report
}

// terminate tears down every observation except clicks.
func (t *Tracker) terminate() {
	t.state = StateTerminal
	t.releaseStrategy()
	if t.resizeSub != nil {
		t.resizeSub.Unsubscribe()
		t.resizeSub = nil
	}
	if t.resizeThrottle != nil {
		t.resizeThrottle.Stop()
	}
	t.rows = nil
	t.opts.metrics.RecordTerminal(t.ctx)
	observability.LogTerminal(t.logger, t.cfg.WidgetID, t.ledger.Len())
}

// Destroy flushes pending events, releases every subscription and timer,
// and makes the tracker inert. It is idempotent.
func (t *Tracker) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateDestroyed {
		return
	}

	flushed := 0
	if t.state == StateObserving || t.state == StateTerminal {
		t.flushThrottle.Stop()
		flushed = t.dispatcher.Flush(t.ctx).Sent
		if flushed > 0 {
			t.saveSnapshot()
		}
	}

	t.releaseStrategy()
	if t.resizeThrottle != nil {
		t.resizeThrottle.Stop()
	}
	for _, sub := range []Subscription{t.resizeSub, t.clickSub} {
		if sub != nil {
			sub.Unsubscribe()
		}
	}

	t.state = StateDestroyed
	t.resizeSub = nil
	t.clickSub = nil
	t.vp = nil
	t.sink = nil
	t.dispatcher = nil
	t.rows = nil
	t.layouts = nil
	observability.LogDestroy(t.logger, t.cfg.WidgetID, flushed)
}

func (t *Tracker) restoreSnapshot() {
	if t.opts.store == nil {
		return
	}
	data, err := t.opts.store.Load(t.cfg.WidgetID)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		observability.LogStoreError(t.logger, t.cfg.WidgetID, "load", err)
		return
	}
	snap, err := ledger.UnmarshalSnapshot(data)
	if err != nil {
		observability.LogStoreError(t.logger, t.cfg.WidgetID, "decode", err)
		return
	}
	if _, err := t.ledger.Restore(t.currentOnly(snap)); err != nil {
		observability.LogStoreError(t.logger, t.cfg.WidgetID, "restore", err)
	}
}

// currentOnly drops snapshot keys for items no longer rendered, so they do
// not count towards completion. Malformed keys are kept for Restore to
// report.
func (t *Tracker) currentOnly(snap ledger.Snapshot) ledger.Snapshot {
	items := make(map[string]struct{}, len(t.cfg.Items))
	for _, id := range t.cfg.Items {
		items[id] = struct{}{}
	}

	kept := make([]string, 0, len(snap.Acknowledged))
	for _, raw := range snap.Acknowledged {
		key, err := ledger.ParseKey(raw)
		if err == nil {
			if _, ok := items[key.SubjectID]; !ok && key.Kind != ledger.WidgetShown {
				continue
			}
			if key.Kind == ledger.WidgetShown && key.SubjectID != t.cfg.WidgetID {
				continue
			}
		}
		kept = append(kept, raw)
	}
	snap.Acknowledged = kept
	return snap
}

func (t *Tracker) saveSnapshot() {
	if t.opts.store == nil {
		return
	}
	data, err := ledger.MarshalSnapshot(t.ledger.Snapshot(t.cfg.WidgetID))
	if err == nil {
		err = t.opts.store.Save(t.cfg.WidgetID, data)
	}
	if err != nil {
		observability.LogStoreError(t.logger, t.cfg.WidgetID, "save", err)
	}
}

// State returns the lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Events returns a copy of the ledger in insertion order.
func (t *Tracker) Events() []ledger.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Events()
}

// Layout returns the active layout. ok is false before a successful Init.
func (t *Tracker) Layout() (l layout.Layout, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.layouts == nil {
		return layout.Layout{}, false
	}
	return t.current, true
}

// Mode returns the active strategy mode, or "" when nothing is observed.
func (t *Tracker) Mode() visibility.Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.strategy == nil {
		return ""
	}
	return t.strategy.Mode()
}
