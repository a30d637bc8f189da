package notifications

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotification(id string, typ Type) Notification {
	return Notification{
		ID:        id,
		Title:     "title " + id,
		Message:   "message " + id,
		Type:      typ,
		CreatedAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestStore_PrependPutsNewestFirst(t *testing.T) {
	s := NewStore(10)
	s.Prepend(newNotification("marks-1", TypeMarks))
	s.Prepend(newNotification("placement-1", TypePlacement))
	s.Prepend(newNotification("notice-1", TypeNotice))

	items := s.List()
	require.Len(t, items, 3)
	assert.Equal(t, "notice-1", items[0].ID)
	assert.Equal(t, TypeNotice, items[0].Type)
	assert.False(t, items[0].Read)
	assert.Equal(t, "marks-1", items[2].ID)
	assert.Equal(t, 3, s.UnreadCount())
}

func TestStore_PrependIgnoresDuplicateIDs(t *testing.T) {
	s := NewStore(10)
	assert.True(t, s.Prepend(newNotification("notice-1", TypeNotice)))
	assert.False(t, s.Prepend(newNotification("notice-1", TypeNotice)))
	assert.Len(t, s.List(), 1)
}

func TestStore_CapacityDropsOldest(t *testing.T) {
	s := NewStore(3)
	for i := 1; i <= 5; i++ {
		s.Prepend(newNotification(fmt.Sprintf("notice-%d", i), TypeNotice))
	}

	items := s.List()
	require.Len(t, items, 3)
	assert.Equal(t, "notice-5", items[0].ID)
	assert.Equal(t, "notice-3", items[2].ID)
}

func TestStore_MarkAsReadIsIdempotent(t *testing.T) {
	s := NewStore(10)
	s.Prepend(newNotification("notice-1", TypeNotice))
	s.Prepend(newNotification("marks-2", TypeMarks))

	assert.True(t, s.MarkAsRead("notice-1"))
	after := s.UnreadCount()
	assert.Equal(t, 1, after)

	assert.False(t, s.MarkAsRead("notice-1"))
	assert.Equal(t, after, s.UnreadCount())
}

func TestStore_MarkAsReadUnknownIDIsNoop(t *testing.T) {
	s := NewStore(10)
	s.Prepend(newNotification("notice-1", TypeNotice))

	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })

	assert.False(t, s.MarkAsRead("missing"))
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_ClearAll(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Store)
	}{
		{"empty", func(*Store) {}},
		{"all unread", func(s *Store) {
			s.Prepend(newNotification("notice-1", TypeNotice))
			s.Prepend(newNotification("marks-1", TypeMarks))
		}},
		{"mixed read state", func(s *Store) {
			s.Prepend(newNotification("notice-1", TypeNotice))
			s.Prepend(newNotification("placement-1", TypePlacement))
			s.MarkAsRead("notice-1")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(10)
			tt.setup(s)

			s.ClearAll()
			assert.Empty(t, s.List())
			assert.Equal(t, 0, s.UnreadCount())
		})
	}
}

func TestStore_ListenersReceiveSnapshots(t *testing.T) {
	s := NewStore(10)

	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	s.Prepend(newNotification("notice-1", TypeNotice))
	s.MarkAsRead("notice-1")
	s.ClearAll()

	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].UnreadCount)
	assert.Equal(t, 0, got[1].UnreadCount)
	assert.True(t, got[1].Items[0].Read)
	assert.Empty(t, got[2].Items)

	unsubscribe()
	unsubscribe()
	s.Prepend(newNotification("notice-2", TypeNotice))
	assert.Len(t, got, 3)
	assert.Equal(t, 0, s.ListenerCount())
}

func TestStore_ListenerMayCallBackIntoStore(t *testing.T) {
	s := NewStore(10)
	var seen int
	s.Subscribe(func(Snapshot) { seen = s.UnreadCount() })

	s.Prepend(newNotification("notice-1", TypeNotice))
	assert.Equal(t, 1, seen)
}

func TestStore_CloseDropsListeners(t *testing.T) {
	s := NewStore(10)
	s.Subscribe(func(Snapshot) {})
	s.Subscribe(func(Snapshot) {})
	s.Prepend(newNotification("notice-1", TypeNotice))

	s.Close()
	assert.Equal(t, 0, s.ListenerCount())
	assert.Len(t, s.List(), 1)
}

func TestStore_ListReturnsCopy(t *testing.T) {
	s := NewStore(10)
	s.Prepend(newNotification("notice-1", TypeNotice))

	items := s.List()
	items[0].Read = true
	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore(DefaultCapacity)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("notice-%d", i)
			s.Prepend(newNotification(id, TypeNotice))
			s.MarkAsRead(id)
			_ = s.UnreadCount()
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.List(), 20)
	assert.Equal(t, 0, s.UnreadCount())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(5)

	a := r.Store(1)
	assert.Same(t, a, r.Store(1))
	assert.NotSame(t, a, r.Store(2))
	assert.Equal(t, 2, r.Len())

	a.Subscribe(func(Snapshot) {})
	r.Drop(1)
	assert.Equal(t, 0, a.ListenerCount())
	_, ok := r.Lookup(1)
	assert.False(t, ok)
}

func TestTypeValid(t *testing.T) {
	assert.True(t, TypeAttendance.Valid())
	assert.False(t, Type("grades").Valid())
}
