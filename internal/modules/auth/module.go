package auth

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/taskpulse/internal/modules/auth/application"
	"github.com/saransh1220/taskpulse/internal/modules/auth/infrastructure/persistence/postgres"
	auth_http "github.com/saransh1220/taskpulse/internal/modules/auth/interfaces/http"
)

type Module struct {
	service *application.AuthService
	handler *auth_http.AuthHandler
}

func NewModule(db *sqlx.DB, jwtSecret string, jwtExpiry time.Duration, googleClientID string) *Module {
	repo := postgres.NewUserRepository(db)
	service := application.NewAuthService(repo, jwtSecret, jwtExpiry)
	handler := auth_http.NewAuthHandler(service, googleClientID)

	return &Module{service: service, handler: handler}
}

func (m *Module) HTTPHandler() *auth_http.AuthHandler {
	return m.handler
}

func (m *Module) Service() *application.AuthService {
	return m.service
}
