package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saransh1220/taskpulse/internal/gateway/middleware"
	auth_http "github.com/saransh1220/taskpulse/internal/modules/auth/interfaces/http"
	notification_http "github.com/saransh1220/taskpulse/internal/modules/notification/interfaces/http"
)

// RouterConfig holds the handlers and middleware needed for routing.
type RouterConfig struct {
	AuthHandler         *auth_http.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	NotificationHandler *notification_http.NotificationHandler
	PreferenceHandler   *notification_http.PreferenceHandler
}

// SetupRoutes creates and configures all application routes.
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// Health Check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Auth Routes
	mux.HandleFunc("POST /register", config.AuthHandler.Register)
	mux.HandleFunc("POST /login", config.AuthHandler.Login)
	mux.HandleFunc("POST /auth/google", config.AuthHandler.GoogleLogin)
	mux.Handle("GET /me", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.AuthHandler.Me)))

	// Notification Routes
	mux.Handle("GET /notifications", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.List)))
	mux.Handle("POST /notifications", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.Create)))
	mux.Handle("PATCH /notifications/{id}/read", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.MarkAsRead)))
	mux.Handle("PATCH /notifications/read-all", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.MarkAllAsRead)))
	mux.Handle("DELETE /notifications/{id}", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.Delete)))
	mux.Handle("GET /notifications/unread-count", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.UnreadCount)))

	// Preference Routes
	mux.Handle("GET /preferences", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.PreferenceHandler.Get)))
	mux.Handle("PUT /preferences", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.PreferenceHandler.Update)))

	// Real-time subscription
	mux.Handle("GET /ws", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.Subscribe)))

	return mux
}
