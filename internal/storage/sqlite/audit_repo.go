package sqlite

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
		VALUES (?, ?, NULLIF(?, ''), NULLIF(?, ''), ?)
	`
	_, err := r.db.Conn.ExecContext(ctx, query,
		entry.ID, entry.Action, entry.EntityID, entry.Details, fmtTime(entry.CreatedAt),
	)
	if err != nil {
		return model.AuditLog{}, mapError(err)
	}
	return entry, nil
}
