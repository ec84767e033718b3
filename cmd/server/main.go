package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/saransh1220/taskpulse/internal/gateway"
	"github.com/saransh1220/taskpulse/internal/gateway/middleware"
	"github.com/saransh1220/taskpulse/internal/modules/auth"
	"github.com/saransh1220/taskpulse/internal/modules/notification"
	"github.com/saransh1220/taskpulse/internal/shared/infrastructure/config"
	"github.com/saransh1220/taskpulse/internal/shared/infrastructure/database"
	"github.com/saransh1220/taskpulse/pkg/migration"
)

func main() {
	cfg := config.Load()

	log.Println("Connecting to DB...")
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := migration.AutoMigrate(cfg.Database.URL(), cfg.Server.MigrationsPath, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("Redis connected")

	authModule := auth.NewModule(db, cfg.JWT.Secret, cfg.JWT.Expiry, cfg.Google.ClientID)
	notificationModule := notification.NewModule(db, rdb)
	defer notificationModule.Shutdown()

	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthHandler:         authModule.HTTPHandler(),
		AuthMiddleware:      middleware.NewAuthMiddleware(cfg.JWT.Secret),
		NotificationHandler: notificationModule.HTTPHandler(),
		PreferenceHandler:   notificationModule.PreferenceHandler(),
	})

	server := gateway.NewServer(cfg.Server.Port, middleware.Prometheus(mux))
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
