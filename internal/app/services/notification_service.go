package services

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/pkg/notifications"
	"github.com/yigit/campusdesk/internal/pkg/realtime"
	"github.com/yigit/campusdesk/internal/pkg/websocket"
)

// Socket commands accepted from clients
const (
	ActionMarkAsRead = "markAsRead"
	ActionClearAll   = "clearAll"
)

// Pusher delivers envelopes to a user's open sockets
type Pusher interface {
	SendToUser(userID int64, envelopeType string, data interface{})
	DisconnectUser(userID int64)
}

// INotificationService defines the HTTP view of a user's notification store
type INotificationService interface {
	List(userID int64) dto.NotificationListResponse
	MarkAsRead(userID int64, id string) dto.NotificationListResponse
	ClearAll(userID int64) dto.NotificationListResponse
}

type session struct {
	unsubscribe func()
	unlisten    func()
}

// NotificationService ties each connected user to the realtime manager and
// forwards store changes to their sockets. It implements websocket.Presence
// and AuthEventPublisher.
type NotificationService struct {
	registry *notifications.Registry
	manager  *realtime.Manager
	pusher   Pusher
	logger   zerolog.Logger

	mu       sync.Mutex
	sessions map[int64]*session
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(registry *notifications.Registry, manager *realtime.Manager, pusher Pusher, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		registry: registry,
		manager:  manager,
		pusher:   pusher,
		logger:   logger,
		sessions: make(map[int64]*session),
	}
}

// Connected subscribes the user's store to the change stream when their first socket opens
func (s *NotificationService) Connected(info websocket.ClientInfo) {
	userID := info.UserID
	store := s.registry.Store(userID)

	sub := realtime.Subscriber{
		UserID: userID,
		Role:   info.Role,
		Store:  store,
		Toast: func(n notifications.Notification) {
			s.pusher.SendToUser(userID, websocket.TypeToast, n)
		},
		Status: func(connected bool) {
			s.pusher.SendToUser(userID, websocket.TypeStatus, dto.RealtimeStatus{Connected: connected})
		},
	}
	if models.Role(info.Role) == models.RoleStudent {
		sub.EnrollmentNumber = info.EnrollmentNumber
	}

	sess := &session{
		unsubscribe: s.manager.Subscribe(sub),
		unlisten: store.Subscribe(func(snap notifications.Snapshot) {
			s.pusher.SendToUser(userID, websocket.TypeSnapshot, snap)
		}),
	}

	s.mu.Lock()
	prev := s.sessions[userID]
	s.sessions[userID] = sess
	s.mu.Unlock()
	if prev != nil {
		prev.close()
	}

	s.pusher.SendToUser(userID, websocket.TypeSnapshot, store.Snapshot())
	s.pusher.SendToUser(userID, websocket.TypeStatus, dto.RealtimeStatus{Connected: s.manager.Connected()})
}

// Disconnected tears the subscription down when the user's last socket closes.
// The store is kept so notifications survive a reconnect.
func (s *NotificationService) Disconnected(userID int64) {
	s.mu.Lock()
	sess := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()

	if sess != nil {
		sess.close()
	}
}

// Command applies a socket command to the user's store
func (s *NotificationService) Command(userID int64, cmd websocket.Command) {
	store, ok := s.registry.Lookup(userID)
	if !ok {
		return
	}
	switch cmd.Action {
	case ActionMarkAsRead:
		store.MarkAsRead(cmd.ID)
	case ActionClearAll:
		store.ClearAll()
	default:
		s.logger.Debug().Int64("userID", userID).Str("action", cmd.Action).Msg("Unknown socket command")
		s.pusher.SendToUser(userID, websocket.TypeError, dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "unknown action"))
	}
}

// List returns the user's notifications. Users who never opened a socket have none.
func (s *NotificationService) List(userID int64) dto.NotificationListResponse {
	store, ok := s.registry.Lookup(userID)
	if !ok {
		return s.view(notifications.Snapshot{Items: []notifications.Notification{}})
	}
	return s.view(store.Snapshot())
}

// MarkAsRead flags one notification. Unknown or already read ids are a no-op.
func (s *NotificationService) MarkAsRead(userID int64, id string) dto.NotificationListResponse {
	if store, ok := s.registry.Lookup(userID); ok {
		store.MarkAsRead(id)
	}
	return s.List(userID)
}

// ClearAll empties the user's notifications
func (s *NotificationService) ClearAll(userID int64) dto.NotificationListResponse {
	if store, ok := s.registry.Lookup(userID); ok {
		store.ClearAll()
	}
	return s.List(userID)
}

// PublishAuthEvent pushes an auth-state change to the user's sockets
func (s *NotificationService) PublishAuthEvent(userID int64, ev dto.AuthEvent) {
	s.pusher.SendToUser(userID, websocket.TypeAuth, ev)
}

// DisconnectUser forgets the user's notifications and closes their sockets.
// The subscription ends when the hub reports the last socket gone.
func (s *NotificationService) DisconnectUser(userID int64) {
	s.registry.Drop(userID)
	s.pusher.DisconnectUser(userID)
}

func (s *NotificationService) view(snap notifications.Snapshot) dto.NotificationListResponse {
	return dto.NotificationListResponse{
		Items:       snap.Items,
		UnreadCount: snap.UnreadCount,
		Connected:   s.manager.Connected(),
	}
}

func (sess *session) close() {
	sess.unsubscribe()
	sess.unlisten()
}
