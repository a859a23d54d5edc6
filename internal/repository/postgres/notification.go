package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

// NotificationRepository implements repository.NotificationRepository using
// PostgreSQL.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create persists a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO notifications (id, recipient_id, kind, title, body, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query, n.ID, n.RecipientID, n.Kind, n.Title, n.Body, payload, n.CreatedAt)
	return err
}

// ListByRecipient returns the most recent notifications for a user.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*domain.Notification, error) {
	query := `
		SELECT id, recipient_id, kind, title, body, payload, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var payload []byte
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.Title, &n.Body, &payload, &n.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &n.Payload); err != nil {
				return nil, err
			}
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}
