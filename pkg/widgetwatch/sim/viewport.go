// Package sim provides an in-memory viewport and click source for tests and
// offline replay. Geometry is in CSS pixels with page coordinates growing
// downward.
package sim

import (
	"sort"
	"sync"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/visibility"
)

// Viewport is a simulated browser window containing one widget list.
//
// Notifications are never delivered from inside a Viewport method called by
// a subscriber. Ratio observers get their first entry on the next Notify,
// ScrollTo or Resize, the way an intersection observer reports on the next
// frame.
type Viewport struct {
	mu sync.Mutex

	width   int
	height  int
	scrollY float64

	listTop    float64
	listHeight float64
	hasList    bool

	nextID  int
	ratios  map[int]*ratioObserver
	scrolls map[int]func()
	resizes map[int]func()
}

type ratioObserver struct {
	thresholds []float64
	fn         func(visibility.Entry)
	bucket     int
	delivered  bool
}

// Compile-time interface check.
var _ visibility.Viewport = (*Viewport)(nil)

// NewViewport creates a window of the given size scrolled to the top, with
// no list.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:   width,
		height:  height,
		ratios:  make(map[int]*ratioObserver),
		scrolls: make(map[int]func()),
		resizes: make(map[int]func()),
	}
}

// SetList places the widget list at page offset top with the given height.
func (v *Viewport) SetList(top, height float64) {
	v.mu.Lock()
	v.listTop = top
	v.listHeight = height
	v.hasList = true
	v.mu.Unlock()
}

// RemoveList removes the widget list.
func (v *Viewport) RemoveList() {
	v.mu.Lock()
	v.hasList = false
	v.mu.Unlock()
}

// Size implements visibility.Viewport.
func (v *Viewport) Size() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// ScrollY implements visibility.Viewport.
func (v *Viewport) ScrollY() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollY
}

// ListRect implements visibility.Viewport.
func (v *Viewport) ListRect() (visibility.Rect, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.hasList {
		return visibility.Rect{}, false
	}
	return visibility.Rect{Top: v.listTop - v.scrollY, Height: v.listHeight}, true
}

// ObserveRatio implements visibility.Viewport.
func (v *Viewport) ObserveRatio(thresholds []float64, fn func(visibility.Entry)) visibility.Subscription {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.register()
	v.ratios[id] = &ratioObserver{
		thresholds: append([]float64(nil), thresholds...),
		fn:         fn,
	}
	return v.unsubscriber(func() { delete(v.ratios, id) })
}

// OnScroll implements visibility.Viewport.
func (v *Viewport) OnScroll(fn func()) visibility.Subscription {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.register()
	v.scrolls[id] = fn
	return v.unsubscriber(func() { delete(v.scrolls, id) })
}

// OnResize implements visibility.Viewport.
func (v *Viewport) OnResize(fn func()) visibility.Subscription {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.register()
	v.resizes[id] = fn
	return v.unsubscriber(func() { delete(v.resizes, id) })
}

func (v *Viewport) register() int {
	v.nextID++
	return v.nextID
}

func (v *Viewport) unsubscriber(remove func()) visibility.Subscription {
	var once sync.Once
	return visibility.SubscriptionFunc(func() {
		once.Do(func() {
			v.mu.Lock()
			remove()
			v.mu.Unlock()
		})
	})
}

// ScrollTo scrolls the page to y, then notifies scroll listeners and any
// ratio observer whose threshold bucket changed.
func (v *Viewport) ScrollTo(y float64) {
	v.mu.Lock()
	v.scrollY = y
	listeners := sortedFuncs(v.scrolls)
	deliveries := v.ratioDeliveries()
	v.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	deliver(deliveries)
}

// Resize changes the window size, then notifies resize listeners and ratio
// observers.
func (v *Viewport) Resize(width, height int) {
	v.mu.Lock()
	v.width = width
	v.height = height
	listeners := sortedFuncs(v.resizes)
	deliveries := v.ratioDeliveries()
	v.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	deliver(deliveries)
}

// Notify delivers pending ratio entries: the first entry of new observers
// and any threshold crossing caused by SetList.
func (v *Viewport) Notify() {
	v.mu.Lock()
	deliveries := v.ratioDeliveries()
	v.mu.Unlock()

	deliver(deliveries)
}

// Emit sends e to every ratio observer as is. Use it to inject entries a
// real browser could produce but the geometry here never does.
func (v *Viewport) Emit(e visibility.Entry) {
	v.mu.Lock()
	var deliveries []delivery
	for _, id := range sortedKeys(v.ratios) {
		deliveries = append(deliveries, delivery{fn: v.ratios[id].fn, entry: e})
	}
	v.mu.Unlock()

	deliver(deliveries)
}

// Ratio returns the fraction of the list inside the window.
func (v *Viewport) Ratio() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ratio()
}

// Subscribers returns the number of ratio, scroll and resize registrations.
func (v *Viewport) Subscribers() (ratio, scroll, resize int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.ratios), len(v.scrolls), len(v.resizes)
}

func (v *Viewport) ratio() float64 {
	if !v.hasList || v.listHeight <= 0 {
		return 0
	}
	top := max(v.listTop, v.scrollY)
	bottom := min(v.listTop+v.listHeight, v.scrollY+float64(v.height))
	if bottom <= top {
		return 0
	}
	return (bottom - top) / v.listHeight
}

type delivery struct {
	fn    func(visibility.Entry)
	entry visibility.Entry
}

// ratioDeliveries collects entries for observers seeing a new bucket.
// The caller holds v.mu.
func (v *Viewport) ratioDeliveries() []delivery {
	r := v.ratio()
	var out []delivery
	for _, id := range sortedKeys(v.ratios) {
		o := v.ratios[id]
		b := bucket(o.thresholds, r)
		if o.delivered && b == o.bucket {
			continue
		}
		o.delivered = true
		o.bucket = b
		out = append(out, delivery{
			fn:    o.fn,
			entry: visibility.Entry{TargetID: "list", IsIntersecting: r > 0, Ratio: r},
		})
	}
	return out
}

func deliver(ds []delivery) {
	for _, d := range ds {
		d.fn(d.entry)
	}
}

// bucket counts the thresholds at or below r.
func bucket(thresholds []float64, r float64) int {
	n := 0
	for _, t := range thresholds {
		if r >= t {
			n++
		}
	}
	return n
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedFuncs(m map[int]func()) []func() {
	keys := sortedKeys(m)
	out := make([]func(), len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}
