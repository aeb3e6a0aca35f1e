package sqlite

import (
	"context"

	"github.com/zapimob/zapimob/internal/storage/model"
)

type assistantRepo struct {
	db *DB
}

func NewAssistantRepository(db *DB) *assistantRepo {
	return &assistantRepo{db: db}
}

func (r *assistantRepo) GetByID(ctx context.Context, id string) (model.Assistant, error) {
	query := `
		SELECT id, name, prompt, COALESCE(model, ''), active, created_at
		FROM assistants
		WHERE id = ?
	`

	var (
		out       model.Assistant
		createdAt string
	)
	err := r.db.Conn.QueryRowContext(ctx, query, id).Scan(
		&out.ID, &out.Name, &out.Prompt, &out.Model, &out.Active, &createdAt,
	)
	if err != nil {
		return model.Assistant{}, mapError(err)
	}
	out.CreatedAt = parseTime(createdAt)
	return out, nil
}
