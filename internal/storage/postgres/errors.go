package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zapimob/zapimob/internal/storage/model"
)

const uniqueViolationCode = "23505"

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return model.ErrDuplicate
	}
	return err
}

// rowScanner cobre pgx.Row e pgx.Rows para helpers de scan compartilhados.
type rowScanner interface {
	Scan(dest ...any) error
}
