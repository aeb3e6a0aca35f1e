package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zapimob/zapimob/internal/storage/model"
)

type leadRepo struct {
	db *DB
}

func NewLeadRepository(db *DB) *leadRepo {
	return &leadRepo{db: db}
}

const leadColumns = `id, name, phone, email, source, status, priority, COALESCE(assigned_to, ''), budget, score, COALESCE(campaign_id, ''), created_at, updated_at`

func (r *leadRepo) Create(ctx context.Context, lead model.Lead) (model.Lead, error) {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	query := `
		INSERT INTO leads (id, name, phone, email, source, status, priority, assigned_to, budget, score, campaign_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, NULLIF(?, ''), ?, ?)
	`
	_, err := r.db.Conn.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Phone, lead.Email, lead.Source, lead.Status, lead.Priority,
		lead.AssignedTo, lead.Budget, lead.Score, lead.CampaignID, fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return model.Lead{}, mapError(err)
	}
	return lead, nil
}

func (r *leadRepo) GetByID(ctx context.Context, id string) (model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = ?`
	return r.scanOne(r.db.Conn.QueryRowContext(ctx, query, id))
}

func (r *leadRepo) FindByPhoneFragment(ctx context.Context, fragment string) (model.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE phone LIKE '%' || ? || '%'
		ORDER BY created_at ASC
		LIMIT 1
	`
	return r.scanOne(r.db.Conn.QueryRowContext(ctx, query, fragment))
}

func (r *leadRepo) List(ctx context.Context) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC LIMIT 500`

	rows, err := r.db.Conn.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *leadRepo) scanOne(row rowScanner) (model.Lead, error) {
	var (
		lead                 model.Lead
		createdAt, updatedAt string
	)
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Phone, &lead.Email, &lead.Source, &lead.Status, &lead.Priority,
		&lead.AssignedTo, &lead.Budget, &lead.Score, &lead.CampaignID, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Lead{}, mapError(err)
	}
	lead.CreatedAt = parseTime(createdAt)
	lead.UpdatedAt = parseTime(updatedAt)
	return lead, nil
}
