package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zapimob/zapimob/internal/storage/model"
)

type businessAccountRepo struct {
	db *DB
}

func NewBusinessAccountRepository(db *DB) *businessAccountRepo {
	return &businessAccountRepo{db: db}
}

func (r *businessAccountRepo) GetByPlatformExternalID(ctx context.Context, platform model.Platform, externalID string) (model.BusinessAccount, error) {
	query := `
		SELECT id, platform, external_id, name, access_token, active, created_at, updated_at
		FROM business_accounts
		WHERE platform = $1 AND external_id = $2
	`

	var out model.BusinessAccount
	err := r.db.Pool.QueryRow(ctx, query, platform, externalID).Scan(
		&out.ID, &out.Platform, &out.ExternalID, &out.Name, &out.AccessToken,
		&out.Active, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return model.BusinessAccount{}, mapError(err)
	}
	return out, nil
}

func (r *businessAccountRepo) Upsert(ctx context.Context, acct model.BusinessAccount) (model.BusinessAccount, error) {
	if acct.ID == "" {
		acct.ID = uuid.New().String()
	}
	now := time.Now()

	query := `
		INSERT INTO business_accounts (id, platform, external_id, name, access_token, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (platform, external_id)
		DO UPDATE SET name = EXCLUDED.name, access_token = EXCLUDED.access_token,
		              active = EXCLUDED.active, updated_at = EXCLUDED.updated_at
		RETURNING id, platform, external_id, name, access_token, active, created_at, updated_at
	`

	var out model.BusinessAccount
	err := r.db.Pool.QueryRow(ctx, query,
		acct.ID, acct.Platform, acct.ExternalID, acct.Name, acct.AccessToken, acct.Active, now,
	).Scan(
		&out.ID, &out.Platform, &out.ExternalID, &out.Name, &out.AccessToken,
		&out.Active, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return model.BusinessAccount{}, mapError(err)
	}
	return out, nil
}

func (r *businessAccountRepo) List(ctx context.Context) ([]model.BusinessAccount, error) {
	query := `
		SELECT id, platform, external_id, name, access_token, active, created_at, updated_at
		FROM business_accounts
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var list []model.BusinessAccount
	for rows.Next() {
		var acct model.BusinessAccount
		err := rows.Scan(
			&acct.ID, &acct.Platform, &acct.ExternalID, &acct.Name, &acct.AccessToken,
			&acct.Active, &acct.CreatedAt, &acct.UpdatedAt,
		)
		if err != nil {
			return nil, mapError(err)
		}
		list = append(list, acct)
	}
	return list, rows.Err()
}
