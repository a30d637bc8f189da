package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/pkg/metrics"
	"github.com/yigit/campusdesk/internal/pkg/notifications"
)

// Subscriber receives the events addressed to one user session.
type Subscriber struct {
	// UserID identifies the subscriber in logs.
	UserID int64
	// Role is "student" or "faculty"; notices are filtered by audience against it.
	Role string
	// EnrollmentNumber filters targeted rows. Faculty subscribers leave it empty.
	EnrollmentNumber string
	// Store receives every delivered notification.
	Store *notifications.Store
	// Toast is called once per delivered notification. Optional.
	Toast func(notifications.Notification)
	// Status is called when the change stream goes down or comes back. Optional.
	Status func(connected bool)
}

// Manager routes events to subscribers.
type Manager struct {
	mu        sync.RWMutex
	subs      map[uint64]Subscriber
	nextID    uint64
	connected bool
	logger    zerolog.Logger
}

// NewManager creates a manager with no subscribers.
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		subs:   make(map[uint64]Subscriber),
		logger: logger,
	}
}

// Subscribe registers sub and returns the teardown func for it.
func (m *Manager) Subscribe(sub Subscriber) (unsubscribe func()) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subs[id] = sub
	count := len(m.subs)
	m.mu.Unlock()

	metrics.RealtimeSubscribers.Set(float64(count))
	m.logger.Debug().Int64("userID", sub.UserID).Str("enrollment", sub.EnrollmentNumber).Msg("Realtime subscription opened")

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			count := len(m.subs)
			m.mu.Unlock()

			metrics.RealtimeSubscribers.Set(float64(count))
			m.logger.Debug().Int64("userID", sub.UserID).Msg("Realtime subscription closed")
		})
	}
}

// Dispatch prepends the event's notification to every matching subscriber's
// store and fires their toast. It returns how many subscribers received it.
func (m *Manager) Dispatch(ev Event) int {
	n := ToNotification(ev)

	m.mu.RLock()
	targets := make([]Subscriber, 0, len(m.subs))
	for _, sub := range m.subs {
		if matches(sub, ev) {
			targets = append(targets, sub)
		}
	}
	m.mu.RUnlock()

	delivered := 0
	for _, sub := range targets {
		if sub.Store == nil || !sub.Store.Prepend(n) {
			continue
		}
		delivered++
		if sub.Toast != nil {
			sub.Toast(n)
		}
	}
	return delivered
}

// SetStatus records the stream state and tells subscribers when it changes.
func (m *Manager) SetStatus(connected bool) {
	m.mu.Lock()
	if m.connected == connected {
		m.mu.Unlock()
		return
	}
	m.connected = connected
	targets := make([]Subscriber, 0, len(m.subs))
	for _, sub := range m.subs {
		targets = append(targets, sub)
	}
	m.mu.Unlock()

	if connected {
		metrics.RealtimeConnected.Set(1)
	} else {
		metrics.RealtimeConnected.Set(0)
	}

	for _, sub := range targets {
		if sub.Status != nil {
			sub.Status(connected)
		}
	}
}

// Connected reports the last known stream state.
func (m *Manager) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Len reports the number of active subscriptions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

func matches(sub Subscriber, ev Event) bool {
	if ev.EnrollmentNumber != "" && ev.EnrollmentNumber != sub.EnrollmentNumber {
		return false
	}
	if ev.Stream == StreamNotices {
		switch ev.Audience {
		case AudienceStudents:
			return sub.Role == "student" || sub.Role == "admin"
		case AudienceFaculty:
			return sub.Role == "faculty" || sub.Role == "admin"
		}
	}
	return true
}
