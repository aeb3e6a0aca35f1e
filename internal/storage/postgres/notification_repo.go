package postgres

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
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Body, n.LeadID, n.Read, n.CreatedAt,
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
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 100
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var list []model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.LeadID, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, mapError(err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}
