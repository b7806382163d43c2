package resume

import (
	"context"
	"sync"
)

// MemoryStore keeps tickets in process memory. Stores built from the same Shelf with the
// same tab share one slot, like two handles on one browser tab.
type MemoryStore struct {
	shelf *Shelf
	key   string
}

// Shelf is the shared backing map for memory stores.
type Shelf struct {
	mu    sync.Mutex
	slots map[string]Ticket
}

func NewShelf() *Shelf {
	return &Shelf{slots: map[string]Ticket{}}
}

// Store returns the store of tab on this shelf.
func (s *Shelf) Store(tab string) *MemoryStore {
	return &MemoryStore{shelf: s, key: Key(tab)}
}

// NewMemoryStore returns a store on a private shelf.
func NewMemoryStore(tab string) *MemoryStore {
	return NewShelf().Store(tab)
}

func (m *MemoryStore) Save(_ context.Context, t Ticket) error {
	if _, err := encode(t); err != nil {
		return err
	}
	m.shelf.mu.Lock()
	defer m.shelf.mu.Unlock()
	m.shelf.slots[m.key] = t
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (Ticket, bool, error) {
	m.shelf.mu.Lock()
	defer m.shelf.mu.Unlock()
	t, ok := m.shelf.slots[m.key]
	return t, ok, nil
}

func (m *MemoryStore) Take(_ context.Context) (Ticket, bool, error) {
	m.shelf.mu.Lock()
	defer m.shelf.mu.Unlock()
	t, ok := m.shelf.slots[m.key]
	if ok {
		delete(m.shelf.slots, m.key)
	}
	return t, ok, nil
}

func (m *MemoryStore) Delete(_ context.Context) error {
	m.shelf.mu.Lock()
	defer m.shelf.mu.Unlock()
	delete(m.shelf.slots, m.key)
	return nil
}
