package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zapimob/zapimob/internal/storage/model"
)

type notificationRepo struct {
	db *DB
}

func NewNotificationRepository(db *DB) *notificationRepo {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now()

	query := `
		INSERT INTO notifications (id, user_id, type, title, body, lead_id, read, created_at)
		VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?)
	`
	_, err := r.db.Conn.ExecContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Body, n.LeadID, n.Read, fmtTime(n.CreatedAt),
	)
	if err != nil {
		return model.Notification{}, mapError(err)
	}
	return n, nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string) ([]model.Notification, error) {
	query := `
		SELECT id, user_id, type, title, body, COALESCE(lead_id, ''), read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT 100
	`

	rows, err := r.db.Conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var list []model.Notification
	for rows.Next() {
		var (
			n         model.Notification
			createdAt string
		)
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.LeadID, &n.Read, &createdAt)
		if err != nil {
			return nil, mapError(err)
		}
		n.CreatedAt = parseTime(createdAt)
		list = append(list, n)
	}
	return list, rows.Err()
}
