package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/example/contentapi/internal/domain/operr"
)

// MapError translates infrastructure failures into operation error codes.
// Already-classified errors pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *operr.Error
	if errors.As(err, &opErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return operr.Wrap(operr.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return operr.Wrap(operr.CodeDatabase, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return operr.Wrap(operr.CodeConflict, op, err) // unique_violation
		case "23503":
			return operr.Wrap(operr.CodeBadRequest, op, err) // foreign_key_violation
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return operr.Wrap(operr.CodeConflict, op, err)
	default:
		return operr.Wrap(operr.CodeDatabase, op, err)
	}
}
