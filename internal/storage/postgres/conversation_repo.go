package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zapimob/zapimob/internal/storage/model"
)

type conversationRepo struct {
	db *DB
}

func NewConversationRepository(db *DB) *conversationRepo {
	return &conversationRepo{db: db}
}

const conversationColumns = `id, channel_id, contact_id, status, last_message_at, created_at`

func (r *conversationRepo) FindActiveByChannel(ctx context.Context, channelID string) (model.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE channel_id = $1 AND status = $2
		ORDER BY last_message_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, channelID, model.ConversationActive))
}

func (r *conversationRepo) Create(ctx context.Context, conv model.Conversation) (model.Conversation, error) {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	if conv.Status == "" {
		conv.Status = model.ConversationActive
	}
	conv.CreatedAt = time.Now()
	if conv.LastMessageAt.IsZero() {
		conv.LastMessageAt = conv.CreatedAt
	}

	query := `
		INSERT INTO conversations (` + conversationColumns + `)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		conv.ID, conv.ChannelID, conv.ContactID, conv.Status, conv.LastMessageAt, conv.CreatedAt,
	)
	if err != nil {
		return model.Conversation{}, mapError(err)
	}
	return conv, nil
}

func (r *conversationRepo) TouchLastMessage(ctx context.Context, id string, ts time.Time) error {
	// GREATEST garante que uma redelivery atrasada nunca retroceda o campo.
	query := `UPDATE conversations SET last_message_at = GREATEST(last_message_at, $2) WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id, ts)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (model.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *conversationRepo) List(ctx context.Context) ([]model.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations ORDER BY last_message_at DESC LIMIT 500`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var convs []model.Conversation
	for rows.Next() {
		conv, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

func (r *conversationRepo) scanOne(row rowScanner) (model.Conversation, error) {
	var (
		conv      model.Conversation
		contactID *string
	)
	err := row.Scan(&conv.ID, &conv.ChannelID, &contactID, &conv.Status, &conv.LastMessageAt, &conv.CreatedAt)
	if err != nil {
		return model.Conversation{}, mapError(err)
	}
	if contactID != nil {
		conv.ContactID = *contactID
	}
	return conv, nil
}
