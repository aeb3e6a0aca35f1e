package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zapimob/zapimob/internal/storage/model"
)

type ruleRepo struct {
	db *DB
}

func NewAutoReplyRuleRepository(db *DB) *ruleRepo {
	return &ruleRepo{db: db}
}

const ruleColumns = `id, platform, keyword, response, use_ai, assistant_id, active, priority, created_at, updated_at`

func (r *ruleRepo) ListActiveByPlatform(ctx context.Context, platform model.Platform) ([]model.AutoReplyRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM auto_reply_rules
		WHERE active = TRUE AND platform IN ($1, $2)
		ORDER BY priority DESC, created_at ASC
	`
	return r.queryMany(ctx, query, platform, model.PlatformAll)
}

func (r *ruleRepo) Create(ctx context.Context, rule model.AutoReplyRule) (model.AutoReplyRule, error) {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	query := `
		INSERT INTO auto_reply_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		rule.ID, rule.Platform, rule.Keyword, rule.Response, rule.UseAI, rule.AssistantID,
		rule.Active, rule.Priority, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return model.AutoReplyRule{}, mapError(err)
	}
	return rule, nil
}

func (r *ruleRepo) GetByID(ctx context.Context, id string) (model.AutoReplyRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM auto_reply_rules WHERE id = $1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *ruleRepo) Update(ctx context.Context, rule model.AutoReplyRule) (model.AutoReplyRule, error) {
	rule.UpdatedAt = time.Now()

	query := `
		UPDATE auto_reply_rules
		SET platform = $2, keyword = $3, response = $4, use_ai = $5,
		    assistant_id = NULLIF($6, ''), active = $7, priority = $8, updated_at = $9
		WHERE id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query,
		rule.ID, rule.Platform, rule.Keyword, rule.Response, rule.UseAI, rule.AssistantID,
		rule.Active, rule.Priority, rule.UpdatedAt,
	)
	if err != nil {
		return model.AutoReplyRule{}, mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return model.AutoReplyRule{}, model.ErrNotFound
	}
	return rule, nil
}

func (r *ruleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM auto_reply_rules WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *ruleRepo) List(ctx context.Context) ([]model.AutoReplyRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM auto_reply_rules ORDER BY priority DESC, created_at ASC`
	return r.queryMany(ctx, query)
}

func (r *ruleRepo) queryMany(ctx context.Context, query string, args ...any) ([]model.AutoReplyRule, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rules []model.AutoReplyRule
	for rows.Next() {
		rule, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *ruleRepo) scanOne(row rowScanner) (model.AutoReplyRule, error) {
	var (
		rule        model.AutoReplyRule
		assistantID *string
	)
	err := row.Scan(
		&rule.ID, &rule.Platform, &rule.Keyword, &rule.Response, &rule.UseAI, &assistantID,
		&rule.Active, &rule.Priority, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return model.AutoReplyRule{}, mapError(err)
	}
	if assistantID != nil {
		rule.AssistantID = *assistantID
	}
	return rule, nil
}
