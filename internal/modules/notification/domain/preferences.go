package domain

import (
	"time"

	"github.com/google/uuid"
)

// Preferences holds a user's per-category opt-in flags. At most one row
// exists per user. A user with no row at all gets every category delivered
// (default-allow), so the zero value of each flag here is true-by-default
// at creation time, not false.
type Preferences struct {
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	TaskAssigned  bool      `json:"task_assigned" db:"task_assigned"`
	TaskUpdated   bool      `json:"task_updated" db:"task_updated"`
	TaskCompleted bool      `json:"task_completed" db:"task_completed"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultPreferences returns the record created lazily on a user's first
// preference-affecting action: everything enabled.
func DefaultPreferences(userID uuid.UUID) *Preferences {
	now := time.Now()
	return &Preferences{
		UserID:        userID,
		TaskAssigned:  true,
		TaskUpdated:   true,
		TaskCompleted: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Allows reports whether notifications of the given category should be
// delivered to this user. Categories without an explicit flag are allowed.
func (p *Preferences) Allows(c Category) bool {
	if p == nil {
		return true
	}
	switch c {
	case CategoryTaskAssigned:
		return p.TaskAssigned
	case CategoryTaskUpdated:
		return p.TaskUpdated
	case CategoryTaskCompleted:
		return p.TaskCompleted
	}
	return true
}
