package sim

import (
	"sync"

	widgetwatch "github.com/randalmurphal/widgetwatch/pkg/widgetwatch"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/visibility"
)

// Element is a node in a simulated element tree.
type Element struct {
	ID string
	Up *Element
}

// ItemID implements widgetwatch.Node.
func (e *Element) ItemID() string {
	return e.ID
}

// Parent implements widgetwatch.Node.
func (e *Element) Parent() widgetwatch.Node {
	if e.Up == nil {
		return nil
	}
	return e.Up
}

// ItemChild returns an element without an id nested inside the card of
// itemID, like an image inside a product tile.
func ItemChild(itemID string) *Element {
	card := &Element{ID: itemID, Up: &Element{}}
	return &Element{Up: card}
}

// Clicks is a simulated click source.
type Clicks struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(widgetwatch.Node)
}

// Compile-time interface check.
var _ widgetwatch.ClickSource = (*Clicks)(nil)

// NewClicks creates a click source with no subscribers.
func NewClicks() *Clicks {
	return &Clicks{subs: make(map[int]func(widgetwatch.Node))}
}

// OnClick implements widgetwatch.ClickSource.
func (c *Clicks) OnClick(fn func(widgetwatch.Node)) widgetwatch.Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.subs[id] = fn
	return visibility.SubscriptionFunc(func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	})
}

// Click delivers n to every subscriber.
func (c *Clicks) Click(n widgetwatch.Node) {
	c.mu.Lock()
	keys := sortedKeys(c.subs)
	fns := make([]func(widgetwatch.Node), len(keys))
	for i, k := range keys {
		fns[i] = c.subs[k]
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(n)
	}
}

// Subscribers returns the number of click subscriptions.
func (c *Clicks) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}
