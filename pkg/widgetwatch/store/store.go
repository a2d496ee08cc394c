// Package store persists per-widget ledger snapshots so a re-mounted widget
// does not resend events that were already delivered.
package store

import (
	"errors"
	"time"
)

// Store persists snapshots keyed by widget id.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores the snapshot for a widget, replacing any previous one.
	Save(widgetID string, data []byte) error

	// Load retrieves a snapshot.
	// Returns ErrNotFound if the widget has no snapshot.
	Load(widgetID string) ([]byte, error)

	// List returns metadata for every stored snapshot, ordered by widget id.
	// Returns an empty slice (not error) if nothing is stored.
	List() ([]Info, error)

	// Delete removes a widget's snapshot.
	// Returns nil if it doesn't exist.
	Delete(widgetID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes a stored snapshot without loading it.
type Info struct {
	WidgetID  string
	UpdatedAt time.Time
	Size      int64
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a widget has no snapshot.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("snapshot store closed")
)
