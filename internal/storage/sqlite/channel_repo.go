package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zapimob/zapimob/internal/storage/model"
)

type channelRepo struct {
	db *DB
}

func NewChannelRepository(db *DB) *channelRepo {
	return &channelRepo{db: db}
}

func (r *channelRepo) Upsert(ctx context.Context, ch model.Channel) (model.Channel, error) {
	if ch.ID == "" {
		ch.ID = uuid.New().String()
	}
	now := fmtTime(time.Now())

	query := `
		INSERT INTO channels (id, platform, external_id, name, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (platform, external_id)
		DO UPDATE SET updated_at = excluded.updated_at
	`
	_, err := r.db.Conn.ExecContext(ctx, query,
		ch.ID, ch.Platform, ch.ExternalID, ch.Name, ch.Active, now, now,
	)
	if err != nil {
		return model.Channel{}, mapError(err)
	}

	// SQLite não retorna a linha no upsert; reler garante o id original
	// quando o canal já existia.
	return r.GetByPlatformExternalID(ctx, ch.Platform, ch.ExternalID)
}

func (r *channelRepo) GetByPlatformExternalID(ctx context.Context, platform model.Platform, externalID string) (model.Channel, error) {
	query := `
		SELECT id, platform, external_id, name, active, created_at, updated_at
		FROM channels
		WHERE platform = ? AND external_id = ?
	`

	var (
		out                  model.Channel
		createdAt, updatedAt string
	)
	err := r.db.Conn.QueryRowContext(ctx, query, platform, externalID).Scan(
		&out.ID, &out.Platform, &out.ExternalID, &out.Name, &out.Active, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Channel{}, mapError(err)
	}
	out.CreatedAt = parseTime(createdAt)
	out.UpdatedAt = parseTime(updatedAt)
	return out, nil
}
