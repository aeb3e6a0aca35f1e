package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zapimob/zapimob/internal/storage/model"
)

type messageRepo struct {
	db *DB
}

func NewMessageRepository(db *DB) *messageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg model.Message) (model.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO messages (id, conversation_id, external_id, direction, source, text, ai_generated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Conn.ExecContext(ctx, query,
		msg.ID, msg.ConversationID, msg.ExternalID, msg.Direction, msg.Source,
		msg.Text, msg.AIGenerated, fmtTime(msg.CreatedAt),
	)
	if err != nil {
		return model.Message{}, mapError(err)
	}
	return msg, nil
}

func (r *messageRepo) ExistsByExternalID(ctx context.Context, source model.Platform, externalID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM messages WHERE source = ? AND external_id = ?)`

	var exists bool
	if err := r.db.Conn.QueryRowContext(ctx, query, source, externalID).Scan(&exists); err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

func (r *messageRepo) ListByConversation(ctx context.Context, conversationID string) ([]model.Message, error) {
	query := `
		SELECT id, conversation_id, external_id, direction, source, text, ai_generated, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.Conn.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var (
			msg       model.Message
			createdAt string
		)
		err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.ExternalID, &msg.Direction, &msg.Source,
			&msg.Text, &msg.AIGenerated, &createdAt,
		)
		if err != nil {
			return nil, mapError(err)
		}
		msg.CreatedAt = parseTime(createdAt)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
