package notifications

import "sync"

// Registry owns one Store per user for the lifetime of the process.
type Registry struct {
	mu       sync.Mutex
	stores   map[int64]*Store
	capacity int
}

// NewRegistry creates a registry whose stores hold at most capacity entries.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		stores:   make(map[int64]*Store),
		capacity: capacity,
	}
}

// Store returns the user's store, creating it on first use.
func (r *Registry) Store(userID int64) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores[userID]
	if !ok {
		s = NewStore(r.capacity)
		r.stores[userID] = s
	}
	return s
}

// Lookup returns the user's store without creating one.
func (r *Registry) Lookup(userID int64) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[userID]
	return s, ok
}

// Drop closes and forgets the user's store, e.g. on sign-out.
func (r *Registry) Drop(userID int64) {
	r.mu.Lock()
	s, ok := r.stores[userID]
	delete(r.stores, userID)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len reports how many users currently have a store.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
