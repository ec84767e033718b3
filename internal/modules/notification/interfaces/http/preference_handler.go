package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/saransh1220/taskpulse/internal/gateway/middleware"
	"github.com/saransh1220/taskpulse/internal/modules/notification/application"
)

type PreferenceHandler struct {
	service *application.NotificationService
}

func NewPreferenceHandler(service *application.NotificationService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

// Get returns the user's preferences; users who never stored any get the
// all-enabled defaults.
func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	prefs, err := h.service.GetPreferences(r.Context(), userID)
	if err != nil {
		log.Printf("[Preference Handler] get failed: %v", err)
		http.Error(w, "failed to fetch preferences", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prefs)
}

type updatePreferencesRequest struct {
	TaskAssigned  bool `json:"task_assigned"`
	TaskUpdated   bool `json:"task_updated"`
	TaskCompleted bool `json:"task_completed"`
}

func (h *PreferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req updatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	prefs, err := h.service.UpdatePreferences(r.Context(), userID, req.TaskAssigned, req.TaskUpdated, req.TaskCompleted)
	if err != nil {
		log.Printf("[Preference Handler] update failed: %v", err)
		http.Error(w, "failed to update preferences", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prefs)
}
