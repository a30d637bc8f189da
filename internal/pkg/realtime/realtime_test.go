package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/notifications"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type fakeLoader struct {
	mu   sync.Mutex
	rows map[Stream][]Event
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{rows: make(map[Stream][]Event)}
}

func (f *fakeLoader) insert(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[ev.Stream] = append(f.rows[ev.Stream], ev)
}

func (f *fakeLoader) Load(_ context.Context, stream Stream, id int64) (Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ev := range f.rows[stream] {
		if ev.RowID == id {
			return ev, nil
		}
	}
	return Event{}, apperrors.ErrResourceNotFound
}

func (f *fakeLoader) Since(_ context.Context, stream Stream, afterID int64, limit int) ([]Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Event
	for _, ev := range f.rows[stream] {
		if ev.RowID > afterID && len(out) < limit {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeLoader) LatestID(_ context.Context, stream Stream) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var max int64
	for _, ev := range f.rows[stream] {
		if ev.RowID > max {
			max = ev.RowID
		}
	}
	return max, nil
}

type session func(ctx context.Context, ready func(context.Context) error, handle func(context.Context, RowRef)) error

type scriptedListener struct {
	mu       sync.Mutex
	sessions []session
	calls    int
}

func (l *scriptedListener) Listen(ctx context.Context, ready func(context.Context) error, handle func(context.Context, RowRef)) error {
	l.mu.Lock()
	i := l.calls
	l.calls++
	l.mu.Unlock()

	if i < len(l.sessions) {
		return l.sessions[i](ctx, ready, handle)
	}
	<-ctx.Done()
	return ctx.Err()
}

type recordingDispatcher struct {
	mu       sync.Mutex
	events   []Event
	statuses []bool
}

func (d *recordingDispatcher) Dispatch(ev Event) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return 1
}

func (d *recordingDispatcher) SetStatus(connected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses = append(d.statuses, connected)
}

func (d *recordingDispatcher) ids() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.events))
	for _, ev := range d.events {
		out = append(out, ToNotification(ev).ID)
	}
	return out
}

func identity(d time.Duration) time.Duration { return d }

func TestToNotification(t *testing.T) {
	tests := []struct {
		name    string
		ev      Event
		wantID  string
		typ     notifications.Type
		title   string
		message string
	}{
		{
			name:    "notice",
			ev:      Event{Stream: StreamNotices, RowID: 4, Title: "Exam schedule released"},
			wantID:  "notice-4",
			typ:     notifications.TypeNotice,
			title:   "New Notice",
			message: "Exam schedule released",
		},
		{
			name:    "marks",
			ev:      Event{Stream: StreamMarks, RowID: 9, Title: "Physics", Body: "midterm: 42/50"},
			wantID:  "marks-9",
			typ:     notifications.TypeMarks,
			title:   "New Marks Posted",
			message: "Physics - midterm: 42/50",
		},
		{
			name:    "placement",
			ev:      Event{Stream: StreamPlacements, RowID: 2, Title: "Acme", Body: "Backend Engineer"},
			wantID:  "placement-2",
			typ:     notifications.TypePlacement,
			title:   "New Placement Opportunity",
			message: "Acme is hiring: Backend Engineer",
		},
		{
			name:    "alert without type defaults to attendance",
			ev:      Event{Stream: StreamAlerts, RowID: 5, Title: "Low attendance", Body: "Below 75% in Maths"},
			wantID:  "alert-5",
			typ:     notifications.TypeAttendance,
			title:   "Low attendance",
			message: "Below 75% in Maths",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := ToNotification(tt.ev)
			assert.Equal(t, tt.wantID, n.ID)
			assert.Equal(t, tt.typ, n.Type)
			assert.Equal(t, tt.title, n.Title)
			assert.Equal(t, tt.message, n.Message)
			assert.False(t, n.Read)
		})
	}
}

func TestManager_NoticeIsPrependedUnread(t *testing.T) {
	m := NewManager(zerolog.Nop())
	store := notifications.NewStore(10)
	store.Prepend(notifications.Notification{ID: "marks-1", Type: notifications.TypeMarks, Read: true})

	var toasts []notifications.Notification
	unsubscribe := m.Subscribe(Subscriber{
		UserID: 1, Role: "student", EnrollmentNumber: "22CS001", Store: store,
		Toast: func(n notifications.Notification) { toasts = append(toasts, n) },
	})
	defer unsubscribe()

	delivered := m.Dispatch(Event{Stream: StreamNotices, RowID: 7, Title: "Holiday", Audience: AudienceAll, CreatedAt: t0})
	assert.Equal(t, 1, delivered)

	items := store.List()
	require.Len(t, items, 2)
	assert.Equal(t, "notice-7", items[0].ID)
	assert.Equal(t, notifications.TypeNotice, items[0].Type)
	assert.False(t, items[0].Read)
	require.Len(t, toasts, 1)
	assert.Equal(t, "notice-7", toasts[0].ID)
}

func TestManager_Filtering(t *testing.T) {
	m := NewManager(zerolog.Nop())
	alice := notifications.NewStore(10)
	bob := notifications.NewStore(10)
	prof := notifications.NewStore(10)
	admin := notifications.NewStore(10)

	m.Subscribe(Subscriber{UserID: 1, Role: "student", EnrollmentNumber: "22CS001", Store: alice})
	m.Subscribe(Subscriber{UserID: 2, Role: "student", EnrollmentNumber: "22CS002", Store: bob})
	m.Subscribe(Subscriber{UserID: 3, Role: "faculty", Store: prof})
	m.Subscribe(Subscriber{UserID: 4, Role: "admin", Store: admin})

	m.Dispatch(Event{Stream: StreamMarks, RowID: 1, EnrollmentNumber: "22CS001", Title: "Maths"})
	m.Dispatch(Event{Stream: StreamPlacements, RowID: 1, Title: "Acme"})
	m.Dispatch(Event{Stream: StreamNotices, RowID: 1, Audience: AudienceFaculty, Title: "Staff meeting"})
	m.Dispatch(Event{Stream: StreamAlerts, RowID: 1, EnrollmentNumber: "22CS002", Title: "Low attendance"})
	m.Dispatch(Event{Stream: StreamNotices, RowID: 2, Audience: AudienceStudents, Title: "Fee deadline"})

	assert.Equal(t, []string{"notice-2", "placement-1", "marks-1"}, storeIDs(alice))
	assert.Equal(t, []string{"notice-2", "alert-1", "placement-1"}, storeIDs(bob))
	assert.Equal(t, []string{"notice-1", "placement-1"}, storeIDs(prof))
	assert.Equal(t, []string{"notice-2", "notice-1", "placement-1"}, storeIDs(admin))
}

func TestManager_UnsubscribeStopsDelivery(t *testing.T) {
	m := NewManager(zerolog.Nop())
	store := notifications.NewStore(10)
	unsubscribe := m.Subscribe(Subscriber{UserID: 1, Role: "student", Store: store})
	assert.Equal(t, 1, m.Len())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, m.Dispatch(Event{Stream: StreamPlacements, RowID: 3}))
	assert.Empty(t, store.List())
}

func TestManager_StatusOnlyOnChange(t *testing.T) {
	m := NewManager(zerolog.Nop())
	var got []bool
	m.Subscribe(Subscriber{UserID: 1, Store: notifications.NewStore(1), Status: func(c bool) { got = append(got, c) }})

	m.SetStatus(true)
	m.SetStatus(true)
	m.SetStatus(false)
	assert.Equal(t, []bool{true, false}, got)
	assert.False(t, m.Connected())
}

func storeIDs(s *notifications.Store) []string {
	var ids []string
	for _, n := range s.List() {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestBackoffDelay(t *testing.T) {
	b := Backoff{Min: 100 * time.Millisecond, Max: time.Second}
	assert.Equal(t, 100*time.Millisecond, b.Delay(0))
	assert.Equal(t, 100*time.Millisecond, b.Delay(1))
	assert.Equal(t, 200*time.Millisecond, b.Delay(2))
	assert.Equal(t, 800*time.Millisecond, b.Delay(4))
	assert.Equal(t, time.Second, b.Delay(5))
	assert.Equal(t, time.Second, b.Delay(60))
}

func TestEqualJitterStaysInRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := equalJitter(time.Second)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, time.Second)
	}
}

func TestSupervisor_ReconnectReplaysFromWatermark(t *testing.T) {
	loader := newFakeLoader()
	loader.insert(Event{Stream: StreamNotices, RowID: 1, Title: "old", CreatedAt: t0})

	dispatcher := &recordingDispatcher{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := &scriptedListener{sessions: []session{
		func(ctx context.Context, ready func(context.Context) error, handle func(context.Context, RowRef)) error {
			require.NoError(t, ready(ctx))
			loader.insert(Event{Stream: StreamNotices, RowID: 2, Title: "live", CreatedAt: t0.Add(time.Minute)})
			handle(ctx, RowRef{Stream: StreamNotices, ID: 2})
			handle(ctx, RowRef{Stream: StreamNotices, ID: 2})

			// Rows written while the connection is down.
			loader.insert(Event{Stream: StreamNotices, RowID: 3, Title: "missed notice", CreatedAt: t0.Add(3 * time.Minute)})
			loader.insert(Event{Stream: StreamMarks, RowID: 10, Title: "Maths", CreatedAt: t0.Add(2 * time.Minute)})
			return errors.New("connection reset")
		},
		func(ctx context.Context, ready func(context.Context) error, handle func(context.Context, RowRef)) error {
			require.NoError(t, ready(ctx))
			// The queued notification for a replayed row must not be delivered twice.
			handle(ctx, RowRef{Stream: StreamNotices, ID: 3})
			cancel()
			return ctx.Err()
		},
	}}

	var delays []time.Duration
	sup := NewSupervisor(listener, loader, dispatcher,
		Backoff{Min: 10 * time.Millisecond, Max: time.Second}, zerolog.Nop(),
		WithJitter(identity),
		WithSleep(func(_ context.Context, d time.Duration) bool {
			delays = append(delays, d)
			return true
		}),
	)

	require.NoError(t, sup.Run(ctx))

	assert.Equal(t, []string{"notice-2", "marks-10", "notice-3"}, dispatcher.ids())
	assert.Equal(t, []bool{true, false, true, false}, dispatcher.statuses)
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, delays)
	assert.Equal(t, int64(3), sup.Watermark(StreamNotices))
	assert.Equal(t, int64(10), sup.Watermark(StreamMarks))
}

func TestSupervisor_ReplayPagesThroughEveryMissedRow(t *testing.T) {
	loader := newFakeLoader()
	dispatcher := &recordingDispatcher{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := &scriptedListener{sessions: []session{
		func(ctx context.Context, ready func(context.Context) error, _ func(context.Context, RowRef)) error {
			require.NoError(t, ready(ctx))
			for id := int64(1); id <= 5; id++ {
				loader.insert(Event{Stream: StreamNotices, RowID: id, Title: "missed", CreatedAt: t0.Add(time.Duration(id) * time.Minute)})
			}
			return errors.New("connection reset")
		},
		func(ctx context.Context, ready func(context.Context) error, handle func(context.Context, RowRef)) error {
			require.NoError(t, ready(ctx))
			loader.insert(Event{Stream: StreamNotices, RowID: 6, Title: "live", CreatedAt: t0.Add(6 * time.Minute)})
			handle(ctx, RowRef{Stream: StreamNotices, ID: 6})
			return errors.New("connection reset")
		},
		func(ctx context.Context, ready func(context.Context) error, _ func(context.Context, RowRef)) error {
			require.NoError(t, ready(ctx))
			cancel()
			return ctx.Err()
		},
	}}

	sup := NewSupervisor(listener, loader, dispatcher,
		Backoff{Min: time.Millisecond, Max: time.Millisecond}, zerolog.Nop(),
		WithReplayLimit(2),
		WithJitter(identity),
		WithSleep(func(context.Context, time.Duration) bool { return true }),
	)

	require.NoError(t, sup.Run(ctx))
	assert.Equal(t, []string{"notice-1", "notice-2", "notice-3", "notice-4", "notice-5", "notice-6"}, dispatcher.ids())
	assert.Equal(t, int64(6), sup.Watermark(StreamNotices))
}

func TestSupervisor_BackoffGrowsUntilConnected(t *testing.T) {
	loader := newFakeLoader()
	dispatcher := &recordingDispatcher{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fail := func(context.Context, func(context.Context) error, func(context.Context, RowRef)) error {
		return errors.New("dial tcp: connection refused")
	}
	listener := &scriptedListener{sessions: []session{fail, fail, fail, fail}}

	var delays []time.Duration
	sup := NewSupervisor(listener, loader, dispatcher,
		Backoff{Min: 100 * time.Millisecond, Max: 300 * time.Millisecond}, zerolog.Nop(),
		WithJitter(identity),
		WithSleep(func(_ context.Context, d time.Duration) bool {
			delays = append(delays, d)
			if len(delays) == 4 {
				cancel()
				return false
			}
			return true
		}),
	)

	require.NoError(t, sup.Run(ctx))
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
		300 * time.Millisecond,
	}, delays)
	assert.Empty(t, dispatcher.events)
}

func TestSupervisor_HistoryIsNotReplayedOnBoot(t *testing.T) {
	loader := newFakeLoader()
	loader.insert(Event{Stream: StreamPlacements, RowID: 1, Title: "Acme", CreatedAt: t0})
	loader.insert(Event{Stream: StreamPlacements, RowID: 2, Title: "Globex", CreatedAt: t0})

	dispatcher := &recordingDispatcher{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := &scriptedListener{sessions: []session{
		func(ctx context.Context, ready func(context.Context) error, handle func(context.Context, RowRef)) error {
			require.NoError(t, ready(ctx))
			handle(ctx, RowRef{Stream: "unknown_table", ID: 1})
			handle(ctx, RowRef{Stream: StreamPlacements, ID: 99})
			cancel()
			return ctx.Err()
		},
	}}

	sup := NewSupervisor(listener, loader, dispatcher, Backoff{Min: time.Millisecond, Max: time.Millisecond}, zerolog.Nop())
	require.NoError(t, sup.Run(ctx))

	assert.Empty(t, dispatcher.events)
	assert.Equal(t, int64(2), sup.Watermark(StreamPlacements))
}

func TestDecodeRowRef(t *testing.T) {
	ref, err := decodeRowRef(`{"table":"marks","id":12}`)
	require.NoError(t, err)
	assert.Equal(t, RowRef{Stream: StreamMarks, ID: 12}, ref)

	_, err = decodeRowRef(`{"table":"marks"}`)
	assert.Error(t, err)
	_, err = decodeRowRef(`not json`)
	assert.Error(t, err)
}
