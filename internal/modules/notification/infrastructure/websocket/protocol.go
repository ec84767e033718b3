package websocket

import "github.com/saransh1220/taskpulse/internal/modules/notification/domain"

// Client -> server message kinds.
const (
	msgFetchNotifications = "fetch_notifications"
	msgMarkRead           = "mark_read"
)

// Server -> client message kinds.
const (
	msgNotificationsList   = "notifications_list"
	msgNotification        = "notification"
	msgNotificationsMarked = "notifications_marked_read"
	msgError               = "error"
)

// inboundMessage is the closed tagged set accepted from clients. Anything
// with an unknown Type gets an error reply and the session stays open.
type inboundMessage struct {
	Type            string  `json:"type"`
	Page            int     `json:"page"`
	NotificationIDs []int64 `json:"notification_ids"`
}

type listReply struct {
	Type          string                `json:"type"`
	Notifications []domain.Notification `json:"notifications"`
	HasNext       bool                  `json:"has_next"`
	TotalPages    int                   `json:"total_pages"`
	TotalCount    int                   `json:"total_count"`
}

type markedReadReply struct {
	Type            string  `json:"type"`
	NotificationIDs []int64 `json:"notification_ids"`
}

type errorReply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PushEvent is the frame sent for a server-initiated notification push.
type PushEvent struct {
	Type         string              `json:"type"`
	Notification domain.Notification `json:"notification"`
}

// NewPushEvent wraps a record in the async push frame.
func NewPushEvent(n domain.Notification) PushEvent {
	return PushEvent{Type: msgNotification, Notification: n}
}
