package bar

import (
	"slices"
	"sync"
)

// Registry holds the items of a bar in insertion order. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	items     map[uint64]*Item
	order     []uint64
	nextID    uint64
	nextOrder uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[uint64]*Item)}
}

// Add stores a copy of it under a fresh ID and order, and returns the
// stored copy. IDs are never reused.
func (r *Registry) Add(it Item) Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.nextOrder++
	it.ID = r.nextID
	it.Order = r.nextOrder
	stored := it
	r.items[it.ID] = &stored
	r.order = append(r.order, it.ID)
	return stored
}

// Update applies fn to the item with the given id. It returns ErrReleased
// if the item is gone. fn runs under the registry lock and must not call
// back into the registry.
func (r *Registry) Update(id uint64, fn func(*Item)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return ErrReleased
	}
	order := it.Order
	fn(it)
	it.ID, it.Order = id, order
	return nil
}

// Remove deletes the item and returns how many items remain.
func (r *Registry) Remove(id uint64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return len(r.items), ErrReleased
	}
	delete(r.items, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return len(r.items), nil
}

// Clear removes every item.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.items)
	r.order = nil
}

// Get returns a copy of the item with the given id.
func (r *Registry) Get(id uint64) (Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

// Len returns the number of items.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Snapshot returns copies of all items in insertion order.
func (r *Registry) Snapshot() []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Item, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.items[id])
	}
	return out
}

// Refreshes returns the refresh requests of all items that have one.
func (r *Registry) Refreshes() []Refresh {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Refresh
	for _, id := range r.order {
		if rf := r.items[id].Refresh; rf.Enabled() {
			out = append(out, rf)
		}
	}
	return out
}
