package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows a recipient query. Zero values mean "no constraint".
type Filter struct {
	Category Category
	From     time.Time
	To       time.Time
	Unread   bool
}

// Page is one page of a recipient's history plus the pagination metadata
// the client renders.
type Page struct {
	Notifications []Notification `json:"notifications"`
	HasNext       bool           `json:"has_next"`
	TotalPages    int            `json:"total_pages"`
	TotalCount    int            `json:"total_count"`
}

// ListSnapshot is the cacheable view of a recipient's history: the newest
// records up to the cache cap, plus the recipient's true total so
// pagination metadata stays correct past the cap.
type ListSnapshot struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	// ListByRecipient returns the recipient's most recent notifications,
	// newest first, capped at limit.
	ListByRecipient(ctx context.Context, recipient uuid.UUID, limit int) ([]Notification, error)
	// QueryByRecipient applies filters and offset pagination.
	QueryByRecipient(ctx context.Context, recipient uuid.UUID, f Filter, limit, offset int) ([]Notification, int, error)
	// CountByRecipient returns the recipient's total number of
	// notifications, read or not.
	CountByRecipient(ctx context.Context, recipient uuid.UUID) (int, error)
	// MarkRead flips read=true for the given ids that belong to recipient
	// and returns the ids actually updated. Ids owned by other users are
	// silently dropped from the result.
	MarkRead(ctx context.Context, recipient uuid.UUID, ids []int64) ([]int64, error)
	MarkAllRead(ctx context.Context, recipient uuid.UUID) error
	Delete(ctx context.Context, recipient uuid.UUID, id int64) error
	UnreadCount(ctx context.Context, recipient uuid.UUID) (int, error)
}

type PreferenceRepository interface {
	// GetByUser returns ErrPreferencesNotFound when the user has never
	// stored preferences; callers treat that as all-enabled.
	GetByUser(ctx context.Context, userID uuid.UUID) (*Preferences, error)
	Upsert(ctx context.Context, p *Preferences) error
}
