package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/taskpulse/internal/modules/notification/domain"
)

type PgPreferenceRepository struct {
	db *sqlx.DB
}

func NewPgPreferenceRepository(db *sqlx.DB) *PgPreferenceRepository {
	return &PgPreferenceRepository{db: db}
}

func (r *PgPreferenceRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Preferences, error) {
	prefs := &domain.Preferences{}
	query := `SELECT * FROM notification_preferences WHERE user_id = $1`

	err := r.db.GetContext(ctx, prefs, query, userID)
	if err == sql.ErrNoRows {
		return nil, domain.ErrPreferencesNotFound
	}
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (r *PgPreferenceRepository) Upsert(ctx context.Context, p *domain.Preferences) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()

	query := `
		INSERT INTO notification_preferences (user_id, task_assigned, task_updated, task_completed, created_at, updated_at)
		VALUES (:user_id, :task_assigned, :task_updated, :task_completed, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			task_assigned = EXCLUDED.task_assigned,
			task_updated = EXCLUDED.task_updated,
			task_completed = EXCLUDED.task_completed,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.NamedExecContext(ctx, query, p)
	return err
}
