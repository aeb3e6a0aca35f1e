package sqlite

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

const conversationColumns = `id, channel_id, COALESCE(contact_id, ''), status, last_message_at, created_at`

func (r *conversationRepo) FindActiveByChannel(ctx context.Context, channelID string) (model.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE channel_id = ? AND status = ?
		ORDER BY last_message_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.Conn.QueryRowContext(ctx, query, channelID, model.ConversationActive))
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
		INSERT INTO conversations (id, channel_id, contact_id, status, last_message_at, created_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?)
	`
	_, err := r.db.Conn.ExecContext(ctx, query,
		conv.ID, conv.ChannelID, conv.ContactID, conv.Status,
		fmtTime(conv.LastMessageAt), fmtTime(conv.CreatedAt),
	)
	if err != nil {
		return model.Conversation{}, mapError(err)
	}
	return conv, nil
}

func (r *conversationRepo) TouchLastMessage(ctx context.Context, id string, ts time.Time) error {
	// MAX sobre strings RFC3339 em UTC preserva a ordem cronológica,
	// então uma redelivery atrasada nunca retrocede o campo.
	query := `UPDATE conversations SET last_message_at = MAX(last_message_at, ?) WHERE id = ?`

	res, err := r.db.Conn.ExecContext(ctx, query, fmtTime(ts), id)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (model.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = ?`
	return r.scanOne(r.db.Conn.QueryRowContext(ctx, query, id))
}

func (r *conversationRepo) List(ctx context.Context) ([]model.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations ORDER BY last_message_at DESC LIMIT 500`

	rows, err := r.db.Conn.QueryContext(ctx, query)
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
		conv                     model.Conversation
		lastMessageAt, createdAt string
	)
	err := row.Scan(&conv.ID, &conv.ChannelID, &conv.ContactID, &conv.Status, &lastMessageAt, &createdAt)
	if err != nil {
		return model.Conversation{}, mapError(err)
	}
	conv.LastMessageAt = parseTime(lastMessageAt)
	conv.CreatedAt = parseTime(createdAt)
	return conv, nil
}
