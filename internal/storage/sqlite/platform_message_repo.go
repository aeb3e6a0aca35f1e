package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zapimob/zapimob/internal/storage/model"
)

// Repositórios das tabelas legadas por plataforma, espelho das
// implementações postgres.

type whatsappMessageRepo struct {
	db *DB
}

func NewWhatsappMessageRepository(db *DB) *whatsappMessageRepo {
	return &whatsappMessageRepo{db: db}
}

func (r *whatsappMessageRepo) Create(ctx context.Context, msg model.WhatsappMessage) (model.WhatsappMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO whatsapp_messages (id, account_id, from_number, to_number, text, external_id, direction, created_at)
		VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Conn.ExecContext(ctx, query,
		msg.ID, msg.AccountID, msg.FromNumber, msg.ToNumber, msg.Text,
		msg.ExternalID, msg.Direction, fmtTime(msg.CreatedAt),
	)
	if err != nil {
		return model.WhatsappMessage{}, mapError(err)
	}
	return msg, nil
}

type instagramMessageRepo struct {
	db *DB
}

func NewInstagramMessageRepository(db *DB) *instagramMessageRepo {
	return &instagramMessageRepo{db: db}
}

func (r *instagramMessageRepo) Create(ctx context.Context, msg model.InstagramMessage) (model.InstagramMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO instagram_messages (id, account_id, sender_id, recipient_id, text, external_id, direction, created_at)
		VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Conn.ExecContext(ctx, query,
		msg.ID, msg.AccountID, msg.SenderID, msg.RecipientID, msg.Text,
		msg.ExternalID, msg.Direction, fmtTime(msg.CreatedAt),
	)
	if err != nil {
		return model.InstagramMessage{}, mapError(err)
	}
	return msg, nil
}
