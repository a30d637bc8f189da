package services

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/pkg/notifications"
	"github.com/yigit/campusdesk/internal/pkg/realtime"
	"github.com/yigit/campusdesk/internal/pkg/websocket"
)

type pushed struct {
	userID int64
	kind   string
	data   interface{}
}

type fakePusher struct {
	mu           sync.Mutex
	sent         []pushed
	disconnected []int64
	// onDisconnect stands in for the hub unregistering the user's last socket
	onDisconnect func(userID int64)
}

func (p *fakePusher) SendToUser(userID int64, envelopeType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, pushed{userID: userID, kind: envelopeType, data: data})
}

func (p *fakePusher) DisconnectUser(userID int64) {
	p.mu.Lock()
	p.disconnected = append(p.disconnected, userID)
	onDisconnect := p.onDisconnect
	p.mu.Unlock()
	if onDisconnect != nil {
		onDisconnect(userID)
	}
}

func (p *fakePusher) kinds(userID int64) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, s := range p.sent {
		if s.userID == userID {
			out = append(out, s.kind)
		}
	}
	return out
}

func (p *fakePusher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = nil
}

func newNotificationFixture() (*NotificationService, *realtime.Manager, *notifications.Registry, *fakePusher) {
	registry := notifications.NewRegistry(10)
	manager := realtime.NewManager(zerolog.Nop())
	pusher := &fakePusher{}
	return NewNotificationService(registry, manager, pusher, zerolog.Nop()), manager, registry, pusher
}

func markEvent(id int64, enrollment string) realtime.Event {
	return realtime.Event{
		Stream:           realtime.StreamMarks,
		RowID:            id,
		CreatedAt:        time.Now(),
		EnrollmentNumber: enrollment,
		Title:            "DBMS",
		Body:             "midterm: 42/50",
	}
}

func TestPresence_ConnectSubscribesAndPushesState(t *testing.T) {
	svc, manager, _, pusher := newNotificationFixture()

	svc.Connected(websocket.ClientInfo{UserID: 1, Role: "student", EnrollmentNumber: "21CS1042"})
	assert.Equal(t, 1, manager.Len())
	assert.Equal(t, []string{websocket.TypeSnapshot, websocket.TypeStatus}, pusher.kinds(1))

	pusher.reset()
	assert.Equal(t, 1, manager.Dispatch(markEvent(1, "21CS1042")))
	assert.Equal(t, 0, manager.Dispatch(markEvent(2, "21CS9999")))
	assert.Equal(t, []string{websocket.TypeSnapshot, websocket.TypeToast}, pusher.kinds(1))

	resp := svc.List(1)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.UnreadCount)
	assert.Equal(t, notifications.TypeMarks, resp.Items[0].Type)

	svc.Disconnected(1)
	assert.Equal(t, 0, manager.Len())
	assert.Len(t, svc.List(1).Items, 1, "store outlives the socket")
}

func TestPresence_FacultyIgnoresTargetedMarks(t *testing.T) {
	svc, manager, _, _ := newNotificationFixture()

	svc.Connected(websocket.ClientInfo{UserID: 2, Role: "faculty", EnrollmentNumber: "IGNORED"})
	assert.Equal(t, 0, manager.Dispatch(markEvent(1, "IGNORED")))
	assert.Equal(t, 1, manager.Dispatch(realtime.Event{Stream: realtime.StreamPlacements, RowID: 1, Title: "Acme", Body: "SDE"}))
}

func TestCommands_MarkAsReadAndClearAll(t *testing.T) {
	svc, manager, _, pusher := newNotificationFixture()
	svc.Connected(websocket.ClientInfo{UserID: 1, Role: "student", EnrollmentNumber: "21CS1042"})
	manager.Dispatch(markEvent(1, "21CS1042"))
	manager.Dispatch(markEvent(2, "21CS1042"))

	id := svc.List(1).Items[0].ID
	svc.Command(1, websocket.Command{Action: ActionMarkAsRead, ID: id})
	assert.Equal(t, 1, svc.List(1).UnreadCount)

	pusher.reset()
	svc.Command(1, websocket.Command{Action: ActionMarkAsRead, ID: id})
	assert.Equal(t, 1, svc.List(1).UnreadCount)
	assert.Empty(t, pusher.kinds(1), "repeat markAsRead does not notify")

	svc.Command(1, websocket.Command{Action: ActionClearAll})
	assert.Empty(t, svc.List(1).Items)
	assert.Equal(t, 0, svc.List(1).UnreadCount)

	pusher.reset()
	svc.Command(1, websocket.Command{Action: "explode"})
	assert.Equal(t, []string{websocket.TypeError}, pusher.kinds(1))
}

func TestHTTPMarkAsReadIsIdempotent(t *testing.T) {
	svc, _, registry, _ := newNotificationFixture()
	registry.Store(3).Prepend(notifications.Notification{ID: "notice-1", Type: notifications.TypeNotice})

	first := svc.MarkAsRead(3, "notice-1")
	second := svc.MarkAsRead(3, "notice-1")
	assert.Equal(t, 0, first.UnreadCount)
	assert.Equal(t, first.UnreadCount, second.UnreadCount)

	unknown := svc.MarkAsRead(3, "missing")
	assert.Equal(t, 0, unknown.UnreadCount)
	assert.Len(t, unknown.Items, 1)
}

func TestAuthPublisher(t *testing.T) {
	svc, manager, registry, pusher := newNotificationFixture()
	pusher.onDisconnect = svc.Disconnected
	svc.Connected(websocket.ClientInfo{UserID: 1, Role: "student", EnrollmentNumber: "21CS1042"})
	pusher.reset()

	svc.PublishAuthEvent(1, dto.AuthEvent{Event: EventSignedOut})
	svc.DisconnectUser(1)

	assert.Equal(t, []string{websocket.TypeAuth}, pusher.kinds(1))
	assert.Equal(t, []int64{1}, pusher.disconnected)
	assert.Equal(t, 0, manager.Len())
	_, ok := registry.Lookup(1)
	assert.False(t, ok)
}

func TestDisconnectUser_LeavesSubscriptionToTheHub(t *testing.T) {
	svc, manager, _, _ := newNotificationFixture()
	svc.Connected(websocket.ClientInfo{UserID: 1, Role: "student", EnrollmentNumber: "21CS1042"})

	svc.DisconnectUser(1)
	assert.Equal(t, 1, manager.Len(), "torn down only once the hub reports the last socket closed")

	svc.Disconnected(1)
	assert.Equal(t, 0, manager.Len())
}

func TestHTTPViewsDoNotCreateStores(t *testing.T) {
	svc, _, registry, _ := newNotificationFixture()

	list := svc.List(5)
	assert.NotNil(t, list.Items)
	assert.Empty(t, list.Items)
	assert.Zero(t, svc.MarkAsRead(5, "notice-1").UnreadCount)
	assert.Empty(t, svc.ClearAll(5).Items)

	assert.Equal(t, 0, registry.Len())
}
