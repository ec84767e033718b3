// Command seed populates the database with demo users, preferences and a
// spread of notifications for local development.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	authdomain "github.com/saransh1220/taskpulse/internal/modules/auth/domain"
	authpg "github.com/saransh1220/taskpulse/internal/modules/auth/infrastructure/persistence/postgres"
	"github.com/saransh1220/taskpulse/internal/modules/notification/domain"
	notifpg "github.com/saransh1220/taskpulse/internal/modules/notification/infrastructure/persistence/postgres"
	"github.com/saransh1220/taskpulse/internal/shared/infrastructure/config"
	"github.com/saransh1220/taskpulse/internal/shared/infrastructure/database"
	"golang.org/x/crypto/bcrypt"
)

var sampleTitles = map[domain.Category][]string{
	domain.CategoryTaskAssigned: {
		"New task assigned to you",
		"You were added to the release checklist",
		"Review requested on deployment plan",
	},
	domain.CategoryTaskUpdated: {
		"Task deadline moved",
		"Build failed",
		"Task description updated",
	},
	domain.CategoryTaskCompleted: {
		"Task marked complete",
		"Checklist finished",
		"Deployment completed",
	},
}

func main() {
	cfg := config.Load()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	userRepo := authpg.NewUserRepository(db)
	notifRepo := notifpg.NewPgNotificationRepository(db)
	prefRepo := notifpg.NewPgPreferenceRepository(db)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	priorities := []domain.Priority{domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh}

	for i := 1; i <= 3; i++ {
		user := &authdomain.User{
			ID:           uuid.New(),
			Email:        fmt.Sprintf("demo%d@taskpulse.dev", i),
			PasswordHash: string(hash),
			Name:         fmt.Sprintf("Demo User %d", i),
			Role:         authdomain.RoleMember,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", user.Email, err)
		}

		// Second user opts out of task-updated noise so preference
		// suppression can be seen end to end.
		prefs := domain.DefaultPreferences(user.ID)
		if i == 2 {
			prefs.TaskUpdated = false
		}
		if err := prefRepo.Upsert(ctx, prefs); err != nil {
			log.Fatalf("Failed to create preferences for %s: %v", user.Email, err)
		}

		n := 0
		for category, titles := range sampleTitles {
			for _, title := range titles {
				notification := &domain.Notification{
					Recipient: user.ID,
					Category:  category,
					Title:     title,
					Message:   fmt.Sprintf("%s (seeded for %s)", title, user.Email),
					Priority:  priorities[n%len(priorities)],
					Read:      n%3 == 0,
					CreatedAt: time.Now().Add(-time.Duration(n) * time.Hour),
				}
				if err := notifRepo.Create(ctx, notification); err != nil {
					log.Fatalf("Failed to create notification: %v", err)
				}
				n++
			}
		}
		log.Printf("Seeded %s with %d notifications", user.Email, n)
	}

	log.Println("Seeding complete")
}
