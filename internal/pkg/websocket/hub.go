package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/pkg/metrics"
)

// Envelope types pushed to clients
const (
	TypeToast    = "toast"
	TypeSnapshot = "snapshot"
	TypeStatus   = "status"
	TypeAuth     = "auth"
	TypeError    = "error"
)

// Envelope is the JSON frame written to clients
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Command is a client request read from the socket, e.g. {"action":"markAsRead","id":"notice-4"}
type Command struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
}

// ClientInfo describes the authenticated user behind a connection
type ClientInfo struct {
	UserID           int64
	Role             string
	EnrollmentNumber string
}

// Presence is told when a user's first socket opens, when the last one closes,
// and about every command the user sends. Connected and Disconnected are only
// called from the hub loop, so they never overlap. Command runs on the sending
// client's read pump.
type Presence interface {
	Connected(info ClientInfo)
	Disconnected(userID int64)
	Command(userID int64, cmd Command)
}

// Hub maintains the set of active clients grouped by user
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Closed when Run returns
	done chan struct{}

	presence Presence

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[int64]map[*Client]bool),
		logger:     logger,
	}
}

// SetPresence installs the session hooks. It must be called before Run.
func (h *Hub) SetPresence(p Presence) {
	h.presence = p
}

// Run handles client registrations until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		}
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	userID := client.info.UserID
	first := false
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*Client]bool)
		first = true
	}
	h.clients[userID][client] = true
	total := h.countLocked()
	h.mu.Unlock()

	metrics.WebsocketClients.Set(float64(total))
	h.logger.Info().
		Int64("userID", userID).
		Str("addr", client.remoteAddr()).
		Msg("Client registered")

	if first && h.presence != nil {
		h.presence.Connected(client.info)
	}
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	userID := client.info.UserID
	last := false
	if clients, ok := h.clients[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.clients, userID)
				last = true
			}

			h.logger.Info().
				Int64("userID", userID).
				Str("addr", client.remoteAddr()).
				Msg("Client unregistered")
		}
	}
	total := h.countLocked()
	h.mu.Unlock()

	metrics.WebsocketClients.Set(float64(total))
	if last && h.presence != nil {
		h.presence.Disconnected(userID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	var users []int64
	for userID, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		users = append(users, userID)
	}
	h.clients = make(map[int64]map[*Client]bool)
	h.mu.Unlock()

	metrics.WebsocketClients.Set(0)
	if h.presence != nil {
		for _, userID := range users {
			h.presence.Disconnected(userID)
		}
	}
}

func (h *Hub) countLocked() int {
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// SendToUser writes an envelope to every socket of the user. Clients whose
// buffer is full are dropped. It never blocks on the hub loop, so presence
// hooks may call it.
func (h *Hub) SendToUser(userID int64, envelopeType string, data interface{}) {
	payload, err := json.Marshal(Envelope{Type: envelopeType, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Str("type", envelopeType).Msg("Failed to marshal envelope")
		return
	}

	var slow []*Client
	h.mu.RLock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn().Int64("userID", userID).Msg("Dropping slow WebSocket client")
		go h.remove(client)
	}
}

// add hands a client to the hub loop. It returns false once the hub has stopped.
func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// DisconnectUser closes every socket of the user, e.g. after sign-out.
func (h *Hub) DisconnectUser(userID int64) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients[userID]))
	for client := range h.clients[userID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		go h.remove(client)
	}
}

// GetClientsCount returns the number of connected sockets for a user
func (h *Hub) GetClientsCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
