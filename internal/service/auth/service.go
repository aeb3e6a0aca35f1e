package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/zapimob/zapimob/internal/storage"
	"github.com/zapimob/zapimob/internal/storage/model"
)

var ErrInvalidCredentials = errors.New("credenciais inválidas")

type Service struct {
	secret   string
	expHours int
	users    storage.UserRepository
}

func NewService(secret string, expHours int, users storage.UserRepository) *Service {
	return &Service{secret: secret, expHours: expHours, users: users}
}

// Login valida email/senha e emite um JWT com sub e role.
func (s *Service) Login(ctx context.Context, email, password string) (string, model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", model.User{}, ErrInvalidCredentials
		}
		return "", model.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", model.User{}, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Duration(s.expHours) * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", model.User{}, err
	}
	return signed, user, nil
}

// Register cria um usuário com a senha já em hash bcrypt.
func (s *Service) Register(ctx context.Context, email, password, name, role string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}
	if role == "" {
		role = "agent"
	}
	return s.users.Create(ctx, model.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
	})
}
