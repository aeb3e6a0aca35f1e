package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zapimob/zapimob/internal/storage/model"
)

type auditRepo struct {
	db *DB
}

func NewAuditLogRepository(db *DB) *auditRepo {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, entry model.AuditLog) (model.AuditLog, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()

	query := `
		INSERT INTO audit_logs (id, action, entity_id, details, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		entry.ID, entry.Action, entry.EntityID, entry.Details, entry.CreatedAt,
	)
	if err != nil {
		return model.AuditLog{}, mapError(err)
	}
	return entry, nil
}
