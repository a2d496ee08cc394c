package store

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in memory. Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]storedSnapshot
	closed bool
}

type storedSnapshot struct {
	data      []byte
	updatedAt time.Time
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]storedSnapshot),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(widgetID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	// Copy data to avoid retaining caller's slice
	stored := make([]byte, len(data))
	copy(stored, data)

	m.data[widgetID] = storedSnapshot{
		data:      stored,
		updatedAt: time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(widgetID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	s, ok := m.data[widgetID]
	if !ok {
		return nil, ErrNotFound
	}

	result := make([]byte, len(s.data))
	copy(result, s.data)
	return result, nil
}

// List implements Store.
func (m *MemoryStore) List() ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	infos := make([]Info, 0, len(m.data))
	for id, s := range m.data {
		infos = append(infos, Info{
			WidgetID:  id,
			UpdatedAt: s.updatedAt,
			Size:      int64(len(s.data)),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].WidgetID < infos[j].WidgetID
	})
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(widgetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.data, widgetID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the number of stored snapshots.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
