package ledger

import (
	"github.com/goccy/go-json"
)

// Ledger is the keyed table of logical events for one widget.
type Ledger struct {
	entries map[Key]*Event
	order   []Key
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		entries: make(map[Key]*Event),
	}
}

// RecordShown inserts an unacknowledged WidgetShown or ItemShown entry.
// It is a no-op when the key already exists and reports whether an entry was created.
func (l *Ledger) RecordShown(kind Kind, subjectID string) bool {
	if kind == ItemClicked || subjectID == "" {
		return false
	}
	key := Key{Kind: kind, SubjectID: subjectID}
	if _, ok := l.entries[key]; ok {
		return false
	}
	l.insert(key, false)
	return true
}

// RecordClicked arms the click entry for an item. A click that was already
// delivered is re-armed in place, so each click is sent once without the
// ledger ever holding two entries for the same item.
// It reports whether the entry went from absent or acknowledged to pending.
func (l *Ledger) RecordClicked(itemID string) bool {
	if itemID == "" {
		return false
	}
	key := Key{Kind: ItemClicked, SubjectID: itemID}
	if e, ok := l.entries[key]; ok {
		if !e.Acknowledged {
			return false
		}
		e.Acknowledged = false
		return true
	}
	l.insert(key, false)
	return true
}

func (l *Ledger) insert(key Key, acknowledged bool) {
	l.entries[key] = &Event{Key: key, Acknowledged: acknowledged}
	l.order = append(l.order, key)
}

// Unacknowledged returns pending entries in insertion order.
func (l *Ledger) Unacknowledged() []Event {
	var out []Event
	for _, key := range l.order {
		if e := l.entries[key]; !e.Acknowledged {
			out = append(out, *e)
		}
	}
	return out
}

// Acknowledge marks the given entries as delivered.
// Keys that are not in the ledger are ignored.
func (l *Ledger) Acknowledge(events []Event) {
	for _, ev := range events {
		if e, ok := l.entries[ev.Key]; ok {
			e.Acknowledged = true
		}
	}
}

// Has reports whether an entry exists for (kind, subjectID).
func (l *Ledger) Has(kind Kind, subjectID string) bool {
	_, ok := l.entries[Key{Kind: kind, SubjectID: subjectID}]
	return ok
}

// IsAcknowledged reports whether (kind, subjectID) exists and was delivered.
func (l *Ledger) IsAcknowledged(kind Kind, subjectID string) bool {
	e, ok := l.entries[Key{Kind: kind, SubjectID: subjectID}]
	return ok && e.Acknowledged
}

// AcknowledgedCount counts delivered entries of one kind.
func (l *Ledger) AcknowledgedCount(kind Kind) int {
	n := 0
	for _, e := range l.entries {
		if e.Kind() == kind && e.Acknowledged {
			n++
		}
	}
	return n
}

// PendingCount counts entries not yet delivered.
func (l *Ledger) PendingCount() int {
	n := 0
	for _, e := range l.entries {
		if !e.Acknowledged {
			n++
		}
	}
	return n
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Events returns a copy of every entry in insertion order.
func (l *Ledger) Events() []Event {
	out := make([]Event, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, *l.entries[key])
	}
	return out
}

// Snapshot is the persisted form of the acknowledged shown events.
type Snapshot struct {
	WidgetID     string   `json:"widget_id"`
	Acknowledged []string `json:"acknowledged"`
}

// Snapshot captures acknowledged WidgetShown and ItemShown keys.
// Clicks are not persisted; they are re-armed per click anyway.
func (l *Ledger) Snapshot(widgetID string) Snapshot {
	s := Snapshot{WidgetID: widgetID, Acknowledged: []string{}}
	for _, key := range l.order {
		e := l.entries[key]
		if e.Acknowledged && key.Kind != ItemClicked {
			s.Acknowledged = append(s.Acknowledged, key.String())
		}
	}
	return s
}

// Restore inserts the snapshot's keys as acknowledged entries.
// Existing entries are left untouched. It returns the number of entries added.
func (l *Ledger) Restore(s Snapshot) (int, error) {
	added := 0
	for _, raw := range s.Acknowledged {
		key, err := ParseKey(raw)
		if err != nil {
			return added, err
		}
		if key.Kind == ItemClicked {
			continue
		}
		if _, ok := l.entries[key]; ok {
			continue
		}
		l.insert(key, true)
		added++
	}
	return added, nil
}

// MarshalSnapshot encodes a snapshot for storage.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes a stored snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
