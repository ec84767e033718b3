package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/saransh1220/taskpulse/internal/modules/notification/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound buffer per session. When full the hub drops the session.
	sendBufferSize = 64

	requestTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SessionHandler serves the client-initiated requests a session can make.
// Implemented by the notification application service.
type SessionHandler interface {
	FetchPage(ctx context.Context, userID uuid.UUID, page int) (domain.Page, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []int64) ([]int64, error)
}

// Client is one live authenticated connection. It owns its read and write
// pumps and its registration in the hub.
type Client struct {
	hub     *Hub
	handler SessionHandler
	conn    *websocket.Conn
	userID  uuid.UUID

	// Buffered channel of outbound messages. Never closed: both the hub
	// and the session's own goroutines write to it, so teardown is
	// signalled through done instead.
	send chan []byte

	// Closed by shutdown to end the write pump and fence off late sends.
	done      chan struct{}
	closeOnce sync.Once
}

// shutdown ends the session's write pump. Called by the hub when it drops
// the session and safe to call from any goroutine, any number of times.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump reads inbound frames and dispatches them. A malformed or unknown
// message gets an error reply; only a transport error ends the session.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WebSocket Client] read error (user: %s): %v", c.userID, err)
			}
			return
		}
		c.dispatch(raw)
	}
}

func (c *Client) dispatch(raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.reply(errorReply{Type: msgError, Message: "invalid message format"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch msg.Type {
	case msgFetchNotifications:
		page := msg.Page
		if page < 1 {
			page = 1
		}
		result, err := c.handler.FetchPage(ctx, c.userID, page)
		if err != nil {
			log.Printf("[WebSocket Client] fetch failed (user: %s): %v", c.userID, err)
			c.reply(errorReply{Type: msgError, Message: "failed to fetch notifications"})
			return
		}
		c.reply(listReply{
			Type:          msgNotificationsList,
			Notifications: result.Notifications,
			HasNext:       result.HasNext,
			TotalPages:    result.TotalPages,
			TotalCount:    result.TotalCount,
		})

	case msgMarkRead:
		updated, err := c.handler.MarkRead(ctx, c.userID, msg.NotificationIDs)
		if err != nil {
			log.Printf("[WebSocket Client] mark read failed (user: %s): %v", c.userID, err)
			c.reply(errorReply{Type: msgError, Message: "failed to mark notifications read"})
			return
		}
		c.reply(markedReadReply{Type: msgNotificationsMarked, NotificationIDs: updated})

	default:
		c.reply(errorReply{Type: msgError, Message: "unknown message type"})
	}
}

func (c *Client) reply(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case <-c.done:
		// The hub already dropped this session; nothing left to reply to.
	case c.send <- payload:
	default:
		// Buffer full; the hub will notice on the next push. The reply is
		// lost but the session is already beyond saving.
	}
}

// writePump drains the send channel to the connection and keeps the
// connection alive with pings. One writePump per session; the hub signals
// shutdown to end it.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades an authenticated request to a websocket session and
// registers it with the hub. The caller must have resolved userID already;
// unauthenticated requests never get here.
func ServeWs(hub *Hub, handler SessionHandler, w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WebSocket Client] upgrade failed: %v", err)
		return
	}
	client := &Client{
		hub:     hub,
		handler: handler,
		conn:    conn,
		userID:  userID,
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
	}
	client.hub.Register(client)

	go client.writePump()
	go client.readPump()
}
