package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zapimob/zapimob/internal/storage/model"
)

type userRepo struct {
	db *DB
}

func NewUserRepository(db *DB) *userRepo {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()

	query := `
		INSERT INTO users (id, email, password_hash, name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Conn.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, fmtTime(user.CreatedAt),
	)
	if err != nil {
		return model.User{}, mapError(err)
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT id, email, password_hash, name, role, created_at FROM users WHERE email = ?`
	return r.scanOne(r.db.Conn.QueryRowContext(ctx, query, email))
}

func (r *userRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	query := `SELECT id, email, password_hash, name, role, created_at FROM users WHERE id = ?`
	return r.scanOne(r.db.Conn.QueryRowContext(ctx, query, id))
}

func (r *userRepo) scanOne(row rowScanner) (model.User, error) {
	var (
		user      model.User
		createdAt string
	)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &createdAt)
	if err != nil {
		return model.User{}, mapError(err)
	}
	user.CreatedAt = parseTime(createdAt)
	return user, nil
}
