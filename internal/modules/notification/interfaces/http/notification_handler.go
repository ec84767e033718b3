package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/saransh1220/taskpulse/internal/gateway/middleware"
	"github.com/saransh1220/taskpulse/internal/modules/notification/application"
	"github.com/saransh1220/taskpulse/internal/modules/notification/domain"
	"github.com/saransh1220/taskpulse/internal/modules/notification/infrastructure/websocket"
)

type NotificationHandler struct {
	service *application.NotificationService
	hub     *websocket.Hub
}

func NewNotificationHandler(service *application.NotificationService, hub *websocket.Hub) *NotificationHandler {
	return &NotificationHandler{service: service, hub: hub}
}

// Subscribe upgrades the request to a websocket session. The auth
// middleware has already resolved the token (header or ?token= query param)
// to a user; anything unauthenticated was rejected before reaching here.
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	websocket.ServeWs(h.hub, h.service, w, r, userID)
}

type createNotificationRequest struct {
	Category domain.Category `json:"category"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Priority domain.Priority `json:"priority"`
}

// Create persists a notification for the authenticated user and triggers
// cache invalidation plus real-time fan-out.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Message == "" {
		http.Error(w, "title and message are required", http.StatusBadRequest)
		return
	}

	n, err := h.service.Create(r.Context(), userID, req.Category, req.Title, req.Message, req.Priority)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCategory) {
			http.Error(w, "invalid notification category", http.StatusBadRequest)
			return
		}
		log.Printf("[Notification Handler] create failed: %v", err)
		http.Error(w, "failed to create notification", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(n)
}

// List returns the user's notifications with optional category/date/unread
// filters and offset pagination.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	var filter domain.Filter
	if c := r.URL.Query().Get("category"); c != "" {
		cat := domain.Category(c)
		if !cat.Valid() {
			http.Error(w, "invalid notification category", http.StatusBadRequest)
			return
		}
		filter.Category = cat
	}
	if f := r.URL.Query().Get("from"); f != "" {
		t, err := time.Parse(time.RFC3339, f)
		if err != nil {
			http.Error(w, "invalid from timestamp", http.StatusBadRequest)
			return
		}
		filter.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			http.Error(w, "invalid to timestamp", http.StatusBadRequest)
			return
		}
		filter.To = t
	}
	filter.Unread = r.URL.Query().Get("unread") == "true"

	notifications, total, err := h.service.Query(r.Context(), userID, filter, limit, offset)
	if err != nil {
		log.Printf("[Notification Handler] list failed: %v", err)
		http.Error(w, "failed to fetch notifications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  notifications,
		"total": total,
	})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}

	updated, err := h.service.MarkRead(r.Context(), userID, []int64{id})
	if err != nil {
		http.Error(w, "failed to mark notification as read", http.StatusInternalServerError)
		return
	}
	if len(updated) == 0 {
		// Not found and not-owned look identical on purpose.
		http.Error(w, "notification not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		http.Error(w, "failed to mark all notifications as read", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete notification", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to get unread count", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"count": count})
}
