package sqlite

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
		WHERE platform = ? AND external_id = ?
	`

	var (
		out                  model.BusinessAccount
		createdAt, updatedAt string
	)
	err := r.db.Conn.QueryRowContext(ctx, query, platform, externalID).Scan(
		&out.ID, &out.Platform, &out.ExternalID, &out.Name, &out.AccessToken,
		&out.Active, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.BusinessAccount{}, mapError(err)
	}
	out.CreatedAt = parseTime(createdAt)
	out.UpdatedAt = parseTime(updatedAt)
	return out, nil
}

func (r *businessAccountRepo) Upsert(ctx context.Context, acct model.BusinessAccount) (model.BusinessAccount, error) {
	if acct.ID == "" {
		acct.ID = uuid.New().String()
	}
	now := fmtTime(time.Now())

	query := `
		INSERT INTO business_accounts (id, platform, external_id, name, access_token, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (platform, external_id)
		DO UPDATE SET name = excluded.name, access_token = excluded.access_token,
		              active = excluded.active, updated_at = excluded.updated_at
	`
	_, err := r.db.Conn.ExecContext(ctx, query,
		acct.ID, acct.Platform, acct.ExternalID, acct.Name, acct.AccessToken, acct.Active, now, now,
	)
	if err != nil {
		return model.BusinessAccount{}, mapError(err)
	}
	return r.GetByPlatformExternalID(ctx, acct.Platform, acct.ExternalID)
}

func (r *businessAccountRepo) List(ctx context.Context) ([]model.BusinessAccount, error) {
	query := `
		SELECT id, platform, external_id, name, access_token, active, created_at, updated_at
		FROM business_accounts
		ORDER BY created_at ASC
	`

	rows, err := r.db.Conn.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var list []model.BusinessAccount
	for rows.Next() {
		var (
			acct                 model.BusinessAccount
			createdAt, updatedAt string
		)
		err := rows.Scan(
			&acct.ID, &acct.Platform, &acct.ExternalID, &acct.Name, &acct.AccessToken,
			&acct.Active, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, mapError(err)
		}
		acct.CreatedAt = parseTime(createdAt)
		acct.UpdatedAt = parseTime(updatedAt)
		list = append(list, acct)
	}
	return list, rows.Err()
}
