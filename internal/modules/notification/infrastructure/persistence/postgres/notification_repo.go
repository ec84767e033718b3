package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/saransh1220/taskpulse/internal/modules/notification/domain"
)

type PgNotificationRepository struct {
	db *sqlx.DB
}

func NewPgNotificationRepository(db *sqlx.DB) *PgNotificationRepository {
	return &PgNotificationRepository{db: db}
}

func (r *PgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.UpdatedAt = n.CreatedAt

	query := `
		INSERT INTO notifications (recipient_id, category, title, message, priority, read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.db.QueryRowxContext(ctx, query,
		n.Recipient, n.Category, n.Title, n.Message, n.Priority, n.Read, n.CreatedAt, n.UpdatedAt,
	).Scan(&n.ID)
}

func (r *PgNotificationRepository) ListByRecipient(ctx context.Context, recipient uuid.UUID, limit int) ([]domain.Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, recipient, limit); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *PgNotificationRepository) QueryByRecipient(ctx context.Context, recipient uuid.UUID, f domain.Filter, limit, offset int) ([]domain.Notification, int, error) {
	conds := []string{"recipient_id = $1"}
	args := []interface{}{recipient}

	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if f.Unread {
		conds = append(conds, "read = FALSE")
	}
	where := strings.Join(conds, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM notifications WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT * FROM notifications WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)
	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *PgNotificationRepository) CountByRecipient(ctx context.Context, recipient uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`
	var count int
	err := r.db.GetContext(ctx, &count, query, recipient)
	return count, err
}

// MarkRead scopes the update to the recipient so a caller can never flip
// another user's notifications; foreign ids simply fall out of the result.
func (r *PgNotificationRepository) MarkRead(ctx context.Context, recipient uuid.UUID, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	query := `
		UPDATE notifications
		SET read = TRUE, updated_at = $3
		WHERE recipient_id = $1 AND id = ANY($2)
		RETURNING id
	`
	updated := []int64{}
	rows, err := r.db.QueryxContext(ctx, query, recipient, pq.Array(ids), time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		updated = append(updated, id)
	}
	return updated, rows.Err()
}

func (r *PgNotificationRepository) MarkAllRead(ctx context.Context, recipient uuid.UUID) error {
	query := `
		UPDATE notifications
		SET read = TRUE, updated_at = $2
		WHERE recipient_id = $1 AND read = FALSE
	`
	_, err := r.db.ExecContext(ctx, query, recipient, time.Now())
	return err
}

func (r *PgNotificationRepository) Delete(ctx context.Context, recipient uuid.UUID, id int64) error {
	query := `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, recipient)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *PgNotificationRepository) UnreadCount(ctx context.Context, recipient uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND read = FALSE
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, recipient)
	return count, err
}
