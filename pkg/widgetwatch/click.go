package widgetwatch

import (
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/ledger"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/observability"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/visibility"
)

// Subscription is a registration that can be released.
type Subscription = visibility.Subscription

// Node is a click target in the host's element tree.
type Node interface {
	// ItemID returns the item identifier carried by this node, or "".
	ItemID() string

	// Parent returns the enclosing node, or nil at the root.
	Parent() Node
}

// ClickSource notifies about clicks inside the widget.
// Like Viewport callbacks, clicks must not be delivered synchronously from
// inside OnClick.
type ClickSource interface {
	OnClick(fn func(Node)) Subscription
}

// maxClickDepth bounds the ancestor walk.
const maxClickDepth = 64

// ResolveItemID returns the item id of the nearest node, starting at n and
// walking up its ancestors, that carries one.
func ResolveItemID(n Node) (string, bool) {
	for depth := 0; n != nil && depth < maxClickDepth; depth++ {
		if id := n.ItemID(); id != "" {
			return id, true
		}
		n = n.Parent()
	}
	return "", false
}

// onClick records a click. Clicks keep being recorded after the terminal
// state, until Destroy.
func (t *Tracker) onClick(n Node) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateObserving && t.state != StateTerminal {
		return
	}

	id, ok := ResolveItemID(n)
	if !ok {
		observability.LogClickDropped(t.logger, t.cfg.WidgetID)
		return
	}
	if t.ledger.RecordClicked(id) {
		t.opts.metrics.RecordEvents(t.ctx, ledger.ItemClicked.String(), 1)
		t.flushThrottle.Trigger()
	}
}
