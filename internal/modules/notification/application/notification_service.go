package application

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/saransh1220/taskpulse/internal/modules/notification/domain"
	"github.com/saransh1220/taskpulse/internal/modules/notification/infrastructure/websocket"
)

const (
	// PageSize is the fixed page length for history fetches.
	PageSize = 10

	// cachedListLimit caps the per-user list snapshot kept in cache.
	cachedListLimit = 200
)

// ListCache is the read-through cache of a user's notification list.
type ListCache interface {
	Get(ctx context.Context, userID uuid.UUID) (domain.ListSnapshot, bool)
	Set(ctx context.Context, userID uuid.UUID, snap domain.ListSnapshot)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type NotificationService struct {
	repo  domain.NotificationRepository
	prefs domain.PreferenceRepository
	cache ListCache
	hub   *websocket.Hub
}

func NewNotificationService(repo domain.NotificationRepository, prefs domain.PreferenceRepository, cache ListCache, hub *websocket.Hub) *NotificationService {
	return &NotificationService{repo: repo, prefs: prefs, cache: cache, hub: hub}
}

// Create persists a new notification, invalidates the recipient's cached
// list and fans the record out to the recipient's open sessions.
func (s *NotificationService) Create(ctx context.Context, recipient uuid.UUID, category domain.Category, title, message string, priority domain.Priority) (*domain.Notification, error) {
	if !category.Valid() {
		return nil, domain.ErrInvalidCategory
	}
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, errors.New("invalid priority")
	}

	now := time.Now()
	n := &domain.Notification{
		Recipient: recipient,
		Category:  category,
		Title:     title,
		Message:   message,
		Priority:  priority,
		Read:      false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.mutateAndInvalidate(ctx, recipient, func() error {
		return s.repo.Create(ctx, n)
	})
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, n)
	return n, nil
}

// NotificationCreated is the hook for collaborators that persisted a record
// themselves: it invalidates the recipient's cache and runs fan-out. The
// record is assumed durable before this is called.
func (s *NotificationService) NotificationCreated(ctx context.Context, n *domain.Notification) {
	s.cache.Invalidate(ctx, n.Recipient)
	s.Publish(ctx, n)
}

// Publish pushes the record to every open session of the recipient, unless
// the recipient has opted out of the category. Fire and forget: suppression
// and zero open sessions are both silent, and delivery is best effort.
func (s *NotificationService) Publish(ctx context.Context, n *domain.Notification) {
	prefs, err := s.prefs.GetByUser(ctx, n.Recipient)
	if err != nil && !errors.Is(err, domain.ErrPreferencesNotFound) {
		// Default-allow on lookup failure: the record is already durable,
		// and suppressing delivery would hide it for no reason.
		log.Printf("[Notification Service] preference lookup failed for %s: %v", n.Recipient, err)
		prefs = nil
	}
	if !prefs.Allows(n.Category) {
		return
	}

	payload, err := json.Marshal(websocket.NewPushEvent(*n))
	if err != nil {
		log.Printf("[Notification Service] marshal failed for notification %d: %v", n.ID, err)
		return
	}
	s.hub.SendToUser(n.Recipient, payload)
}

// FetchPage returns one fixed-size page of the user's history, newest
// first, reading through the cache. The cached snapshot carries the true
// total, so pagination metadata stays correct for histories longer than
// the cached window; pages past the window are read from the store.
func (s *NotificationService) FetchPage(ctx context.Context, userID uuid.UUID, page int) (domain.Page, error) {
	if page < 1 {
		page = 1
	}

	snap, ok := s.cache.Get(ctx, userID)
	if !ok {
		list, err := s.repo.ListByRecipient(ctx, userID, cachedListLimit)
		if err != nil {
			return domain.Page{}, err
		}
		total, err := s.repo.CountByRecipient(ctx, userID)
		if err != nil {
			return domain.Page{}, err
		}
		snap = domain.ListSnapshot{Notifications: list, Total: total}
		s.cache.Set(ctx, userID, snap)
	}

	total := snap.Total
	totalPages := (total + PageSize - 1) / PageSize
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > total {
		end = total
	}

	var notifications []domain.Notification
	switch {
	case start >= total:
		notifications = []domain.Notification{}
	case end <= len(snap.Notifications):
		notifications = snap.Notifications[start:end]
	default:
		var err error
		notifications, _, err = s.repo.QueryByRecipient(ctx, userID, domain.Filter{}, PageSize, start)
		if err != nil {
			return domain.Page{}, err
		}
	}

	return domain.Page{
		Notifications: notifications,
		HasNext:       end < total,
		TotalPages:    totalPages,
		TotalCount:    total,
	}, nil
}

// Query runs a filtered, offset-paginated history query straight against
// the repository. Filtered reads bypass the cache.
func (s *NotificationService) Query(ctx context.Context, userID uuid.UUID, f domain.Filter, limit, offset int) ([]domain.Notification, int, error) {
	return s.repo.QueryByRecipient(ctx, userID, f, limit, offset)
}

// MarkRead flips read=true on the caller's notifications among ids and
// returns the ids actually updated. Ids owned by other users are excluded,
// never errors.
func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, ids []int64) ([]int64, error) {
	var updated []int64
	err := s.mutateAndInvalidate(ctx, userID, func() error {
		var err error
		updated, err = s.repo.MarkRead(ctx, userID, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.mutateAndInvalidate(ctx, userID, func() error {
		return s.repo.MarkAllRead(ctx, userID)
	})
}

// Delete removes one of the caller's notifications. Deletion is an external
// operation as far as live delivery goes, but it still must invalidate.
func (s *NotificationService) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	return s.mutateAndInvalidate(ctx, userID, func() error {
		return s.repo.Delete(ctx, userID, id)
	})
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// GetPreferences returns the user's stored preferences, or the all-enabled
// defaults when none exist yet. The default record is not persisted here;
// it is written on the first update.
func (s *NotificationService) GetPreferences(ctx context.Context, userID uuid.UUID) (*domain.Preferences, error) {
	prefs, err := s.prefs.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrPreferencesNotFound) {
		return domain.DefaultPreferences(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, userID uuid.UUID, taskAssigned, taskUpdated, taskCompleted bool) (*domain.Preferences, error) {
	prefs := domain.DefaultPreferences(userID)
	prefs.TaskAssigned = taskAssigned
	prefs.TaskUpdated = taskUpdated
	prefs.TaskCompleted = taskCompleted

	if err := s.prefs.Upsert(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *NotificationService) Hub() *websocket.Hub {
	return s.hub
}

// mutateAndInvalidate runs fn and, only on success, deletes the user's
// cached list. Every mutation path goes through here so no create, update
// or delete can leave a stale list behind.
func (s *NotificationService) mutateAndInvalidate(ctx context.Context, userID uuid.UUID, fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}
