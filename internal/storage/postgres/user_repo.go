package postgres

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

const userColumns = `id, email, password_hash, name, role, created_at`

func (r *userRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()

	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.CreatedAt,
	)
	if err != nil {
		return model.User{}, mapError(err)
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, email))
}

func (r *userRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *userRepo) scanOne(row rowScanner) (model.User, error) {
	var user model.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.CreatedAt)
	if err != nil {
		return model.User{}, mapError(err)
	}
	return user, nil
}
