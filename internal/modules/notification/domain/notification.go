package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of notification types the system emits.
type Category string

const (
	CategoryTaskAssigned  Category = "TASK_ASSIGNED"
	CategoryTaskUpdated   Category = "TASK_UPDATED"
	CategoryTaskCompleted Category = "TASK_COMPLETED"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTaskAssigned, CategoryTaskUpdated, CategoryTaskCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Notification is one durable notification record. CreatedAt is immutable
// once set, and Read only ever transitions false -> true.
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	Recipient uuid.UUID `json:"recipient" db:"recipient_id"`
	Category  Category  `json:"category" db:"category"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Priority  Priority  `json:"priority" db:"priority"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidCategory      = errors.New("invalid notification category")
	ErrPreferencesNotFound  = errors.New("notification preferences not found")
)
