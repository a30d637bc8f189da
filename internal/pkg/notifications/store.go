// Package notifications holds the per-session list of normalized notifications
// and fans changes out to registered listeners.
package notifications

import (
	"sync"
	"time"
)

// Type classifies a notification by the stream that produced it.
type Type string

const (
	TypeNotice     Type = "notice"
	TypeMarks      Type = "marks"
	TypePlacement  Type = "placement"
	TypeAttendance Type = "attendance"
)

// Valid reports whether t is one of the known notification types.
func (t Type) Valid() bool {
	switch t {
	case TypeNotice, TypeMarks, TypePlacement, TypeAttendance:
		return true
	}
	return false
}

// DefaultCapacity bounds a store when no capacity is configured.
const DefaultCapacity = 50

// Notification is a normalized realtime event shown to one user.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is the state handed to listeners after every change.
type Snapshot struct {
	Items       []Notification `json:"items"`
	UnreadCount int            `json:"unreadCount"`
}

// Listener is called with the new state after each mutation.
type Listener func(Snapshot)

// Store is a bounded, newest-first list of notifications.
type Store struct {
	mu        sync.Mutex
	items     []Notification
	capacity  int
	listeners map[uint64]Listener
	order     []uint64
	nextID    uint64
}

// NewStore creates an empty store. A non-positive capacity falls back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity:  capacity,
		listeners: make(map[uint64]Listener),
	}
}

// Prepend inserts n at the head of the list. A notification whose id is already
// present is ignored. The oldest entries are dropped beyond capacity.
func (s *Store) Prepend(n Notification) bool {
	s.mu.Lock()
	for _, existing := range s.items {
		if existing.ID == n.ID {
			s.mu.Unlock()
			return false
		}
	}

	items := make([]Notification, 0, min(len(s.items)+1, s.capacity))
	items = append(items, n)
	for _, existing := range s.items {
		if len(items) == s.capacity {
			break
		}
		items = append(items, existing)
	}
	s.items = items
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return true
}

// MarkAsRead flips the read flag of the notification with the given id.
// Unknown ids and already-read notifications leave the store untouched.
func (s *Store) MarkAsRead(id string) bool {
	s.mu.Lock()
	changed := false
	for i := range s.items {
		if s.items[i].ID == id {
			if !s.items[i].Read {
				s.items[i].Read = true
				changed = true
			}
			break
		}
	}
	if !changed {
		s.mu.Unlock()
		return false
	}
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return true
}

// ClearAll empties the store.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.items = nil
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snap)
}

// UnreadCount counts unread notifications on every call.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countUnread(s.items)
}

// List returns a copy of the current notifications, newest first.
func (s *Store) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.items...)
}

// Snapshot returns the current list together with its unread count.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, _ := s.snapshotLocked()
	return snap
}

// Subscribe registers l and returns a func that removes it. Calling the
// returned func more than once is safe.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = l
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Close drops every listener. The notifications themselves are kept.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = make(map[uint64]Listener)
	s.order = nil
}

// ListenerCount reports how many listeners are registered.
func (s *Store) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

func (s *Store) snapshotLocked() (Snapshot, []Listener) {
	snap := Snapshot{
		Items:       append([]Notification(nil), s.items...),
		UnreadCount: countUnread(s.items),
	}
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	return snap, listeners
}

// Listeners run outside the lock so they may call back into the store.
func notify(listeners []Listener, snap Snapshot) {
	for _, l := range listeners {
		l(snap)
	}
}

func countUnread(items []Notification) int {
	n := 0
	for _, item := range items {
		if !item.Read {
			n++
		}
	}
	return n
}
