package notification

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/taskpulse/internal/modules/notification/application"
	"github.com/saransh1220/taskpulse/internal/modules/notification/infrastructure/cache"
	"github.com/saransh1220/taskpulse/internal/modules/notification/infrastructure/persistence/postgres"
	"github.com/saransh1220/taskpulse/internal/modules/notification/infrastructure/websocket"
	notification_http "github.com/saransh1220/taskpulse/internal/modules/notification/interfaces/http"
)

type Module struct {
	service           *application.NotificationService
	handler           *notification_http.NotificationHandler
	preferenceHandler *notification_http.PreferenceHandler
	hub               *websocket.Hub
}

func NewModule(db *sqlx.DB, rdb *redis.Client) *Module {
	repo := postgres.NewPgNotificationRepository(db)
	prefRepo := postgres.NewPgPreferenceRepository(db)
	listCache := cache.NewListCache(rdb)

	hub := websocket.NewHub(websocket.NewRegistry())
	go hub.Run()

	service := application.NewNotificationService(repo, prefRepo, listCache, hub)

	return &Module{
		service:           service,
		handler:           notification_http.NewNotificationHandler(service, hub),
		preferenceHandler: notification_http.NewPreferenceHandler(service),
		hub:               hub,
	}
}

func (m *Module) HTTPHandler() *notification_http.NotificationHandler {
	return m.handler
}

func (m *Module) PreferenceHandler() *notification_http.PreferenceHandler {
	return m.preferenceHandler
}

func (m *Module) Service() *application.NotificationService {
	return m.service
}

func (m *Module) Shutdown() {
	m.hub.Stop()
}
