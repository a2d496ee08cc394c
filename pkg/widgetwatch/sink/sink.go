// Package sink defines the wire format of an event batch and the Sink
// capability that transmits it.
package sink

import (
	"context"
	"errors"

	"github.com/goccy/go-json"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/ledger"
)

// ErrClosed indicates a Send after Close.
var ErrClosed = errors.New("sink closed")

// EventPayload is one event inside a batch. ItemID is empty for w_show.
type EventPayload struct {
	Type   string `json:"type"`
	ItemID string `json:"itemId,omitempty"`
}

// Batch is what a Sink receives on each dispatch.
type Batch struct {
	ID       string         `json:"batch_id,omitempty"`
	WidgetID string         `json:"widgetId"`
	Events   []EventPayload `json:"events"`
}

// Sink transmits batches. Delivery is fire-and-forget from the caller's
// perspective: a nil error means the batch was accepted, not delivered.
//
// Sinks are invoked while the tracker holds its lock and must not call back
// into the tracker synchronously.
type Sink interface {
	Send(ctx context.Context, b Batch) error
}

// Func adapts a function to Sink.
type Func func(ctx context.Context, b Batch) error

// Send calls f.
func (f Func) Send(ctx context.Context, b Batch) error {
	return f(ctx, b)
}

// NewBatch converts ledger events into a batch for widgetID.
func NewBatch(id, widgetID string, events []ledger.Event) Batch {
	payloads := make([]EventPayload, 0, len(events))
	for _, e := range events {
		p := EventPayload{Type: e.Kind().String()}
		if e.Kind() != ledger.WidgetShown {
			p.ItemID = e.SubjectID()
		}
		payloads = append(payloads, p)
	}
	return Batch{ID: id, WidgetID: widgetID, Events: payloads}
}

// Marshal encodes a batch as JSON.
func (b Batch) Marshal() ([]byte, error) {
	return json.Marshal(b)
}

// UnmarshalBatch decodes a JSON batch.
func UnmarshalBatch(data []byte) (Batch, error) {
	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return Batch{}, err
	}
	return b, nil
}
