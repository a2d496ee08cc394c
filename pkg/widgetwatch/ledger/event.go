// Package ledger holds the logical events of one widget instance and their
// acknowledgment state.
//
// The ledger keeps at most one entry per (kind, subject) pair for its whole
// lifetime. It performs no locking: callers confine all access to one
// callback at a time.
package ledger

import (
	"fmt"
	"strings"
)

// Kind identifies what a logical event reports.
type Kind int

// Event kinds.
const (
	// WidgetShown is emitted once when any part of the widget list is seen.
	WidgetShown Kind = iota + 1

	// ItemShown is emitted once per item when its row is seen.
	ItemShown

	// ItemClicked is emitted each time an item is clicked.
	ItemClicked
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case WidgetShown:
		return "w_show"
	case ItemShown:
		return "i_show"
	case ItemClicked:
		return "i_click"
	default:
		return "unknown"
	}
}

// ParseKind converts a wire name back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "w_show":
		return WidgetShown, nil
	case "i_show":
		return ItemShown, nil
	case "i_click":
		return ItemClicked, nil
	default:
		return 0, fmt.Errorf("unknown event kind %q", s)
	}
}

// keySeparator joins subject and kind in a key's string form.
const keySeparator = "__"

// Key identifies a logical event. SubjectID is the widget id for WidgetShown
// and the item id otherwise.
type Key struct {
	Kind      Kind
	SubjectID string
}

// String returns the key as "subject__kind".
func (k Key) String() string {
	return k.SubjectID + keySeparator + k.Kind.String()
}

// ParseKey parses the "subject__kind" form produced by Key.String.
func ParseKey(s string) (Key, error) {
	i := strings.LastIndex(s, keySeparator)
	if i <= 0 {
		return Key{}, fmt.Errorf("malformed event key %q", s)
	}
	kind, err := ParseKind(s[i+len(keySeparator):])
	if err != nil {
		return Key{}, err
	}
	return Key{Kind: kind, SubjectID: s[:i]}, nil
}

// Event is one ledger entry.
type Event struct {
	Key          Key
	Acknowledged bool
}

// Kind returns the event kind.
func (e Event) Kind() Kind {
	return e.Key.Kind
}

// SubjectID returns the widget or item id the event is about.
func (e Event) SubjectID() string {
	return e.Key.SubjectID
}
