package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// PushMessage carries one serialized event destined for every open session
// of a single user.
type PushMessage struct {
	UserID  uuid.UUID
	Payload []byte
}

// Hub owns the subscription registry and serializes register/unregister/push
// traffic through its Run loop. Pushes to individual sessions are
// non-blocking: a session whose outbound buffer is full is dropped rather
// than allowed to stall delivery to everyone else.
type Hub struct {
	registry *Registry

	// Register requests from new sessions.
	register chan *Client

	// Unregister requests from closing sessions.
	unregister chan *Client

	// Per-user fan-out requests.
	push chan PushMessage

	// Channel to signal termination.
	stop     chan struct{}
	stopOnce sync.Once
}

func NewHub(registry *Registry) *Hub {
	return &Hub{
		registry:   registry,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		push:       make(chan PushMessage),
		stop:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registry.Add(client.userID, client)
			wsOpenConnections.Inc()
			log.Printf("[WebSocket Hub] Session registered (user: %s)", client.userID)

		case client := <-h.unregister:
			h.drop(client)

		case msg := <-h.push:
			for _, client := range h.registry.Get(msg.UserID) {
				select {
				case client.send <- msg.Payload:
					wsDeliveredTotal.Inc()
				default:
					// Slow consumer: drop it, keep delivering to the rest.
					wsDroppedTotal.Inc()
					h.drop(client)
				}
			}

		case <-h.stop:
			log.Println("[WebSocket Hub] Stopping hub")
			for _, client := range h.registry.All() {
				h.drop(client)
			}
			return
		}
	}
}

func (h *Hub) drop(client *Client) {
	if h.registry.Remove(client.userID, client) {
		// Signal shutdown rather than closing the send channel: the
		// session's readPump also writes to send (protocol replies), and a
		// close here would race those writes.
		client.shutdown()
		wsOpenConnections.Dec()
		log.Printf("[WebSocket Hub] Session unregistered (user: %s)", client.userID)
	}
}

// Register adds a session to the hub. No-op after Stop.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
	}
}

// Unregister removes a session. Safe to call more than once per session and
// safe to call for sessions that were never registered.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// SendToUser pushes a serialized event to every open session of the user.
// Zero open sessions is a silent no-op.
func (h *Hub) SendToUser(userID uuid.UUID, payload []byte) {
	select {
	case h.push <- PushMessage{UserID: userID, Payload: payload}:
	case <-h.stop:
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}
