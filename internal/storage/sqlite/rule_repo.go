package sqlite

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

const ruleColumns = `id, platform, keyword, response, use_ai, COALESCE(assistant_id, ''), active, priority, created_at, updated_at`

func (r *ruleRepo) ListActiveByPlatform(ctx context.Context, platform model.Platform) ([]model.AutoReplyRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM auto_reply_rules
		WHERE active = 1 AND platform IN (?, ?)
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
		INSERT INTO auto_reply_rules (id, platform, keyword, response, use_ai, assistant_id, active, priority, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?)
	`
	_, err := r.db.Conn.ExecContext(ctx, query,
		rule.ID, rule.Platform, rule.Keyword, rule.Response, rule.UseAI, rule.AssistantID,
		rule.Active, rule.Priority, fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return model.AutoReplyRule{}, mapError(err)
	}
	return rule, nil
}

func (r *ruleRepo) GetByID(ctx context.Context, id string) (model.AutoReplyRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM auto_reply_rules WHERE id = ?`
	return r.scanOne(r.db.Conn.QueryRowContext(ctx, query, id))
}

func (r *ruleRepo) Update(ctx context.Context, rule model.AutoReplyRule) (model.AutoReplyRule, error) {
	rule.UpdatedAt = time.Now()

	query := `
		UPDATE auto_reply_rules
		SET platform = ?, keyword = ?, response = ?, use_ai = ?,
		    assistant_id = NULLIF(?, ''), active = ?, priority = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.Conn.ExecContext(ctx, query,
		rule.Platform, rule.Keyword, rule.Response, rule.UseAI, rule.AssistantID,
		rule.Active, rule.Priority, fmtTime(rule.UpdatedAt), rule.ID,
	)
	if err != nil {
		return model.AutoReplyRule{}, mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.AutoReplyRule{}, err
	}
	if affected == 0 {
		return model.AutoReplyRule{}, model.ErrNotFound
	}
	return rule, nil
}

func (r *ruleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.Conn.ExecContext(ctx, `DELETE FROM auto_reply_rules WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *ruleRepo) List(ctx context.Context) ([]model.AutoReplyRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM auto_reply_rules ORDER BY priority DESC, created_at ASC`
	return r.queryMany(ctx, query)
}

func (r *ruleRepo) queryMany(ctx context.Context, query string, args ...any) ([]model.AutoReplyRule, error) {
	rows, err := r.db.Conn.QueryContext(ctx, query, args...)
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
		rule                 model.AutoReplyRule
		createdAt, updatedAt string
	)
	err := row.Scan(
		&rule.ID, &rule.Platform, &rule.Keyword, &rule.Response, &rule.UseAI, &rule.AssistantID,
		&rule.Active, &rule.Priority, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.AutoReplyRule{}, mapError(err)
	}
	rule.CreatedAt = parseTime(createdAt)
	rule.UpdatedAt = parseTime(updatedAt)
	return rule, nil
}
