package postgres

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
	now := time.Now()

	query := `
		INSERT INTO channels (id, platform, external_id, name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (platform, external_id)
		DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id, platform, external_id, name, active, created_at, updated_at
	`

	var out model.Channel
	err := r.db.Pool.QueryRow(ctx, query,
		ch.ID, ch.Platform, ch.ExternalID, ch.Name, ch.Active, now,
	).Scan(
		&out.ID, &out.Platform, &out.ExternalID, &out.Name, &out.Active, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return model.Channel{}, mapError(err)
	}
	return out, nil
}

func (r *channelRepo) GetByPlatformExternalID(ctx context.Context, platform model.Platform, externalID string) (model.Channel, error) {
	query := `
		SELECT id, platform, external_id, name, active, created_at, updated_at
		FROM channels
		WHERE platform = $1 AND external_id = $2
	`

	var out model.Channel
	err := r.db.Pool.QueryRow(ctx, query, platform, externalID).Scan(
		&out.ID, &out.Platform, &out.ExternalID, &out.Name, &out.Active, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return model.Channel{}, mapError(err)
	}
	return out, nil
}
