package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/example/contentapi/internal/domain/operr"
)

func TestMapErrorNotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !operr.IsCode(err, operr.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", operr.CodeOf(err), err)
	}
}

func TestMapErrorUniqueViolation(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "23505"})
	if !operr.IsCode(err, operr.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", operr.CodeOf(err), err)
	}
}

func TestMapErrorForeignKeyViolation(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "23503"})
	if !operr.IsCode(err, operr.CodeBadRequest) {
		t.Fatalf("expected bad_request code, got %q (%v)", operr.CodeOf(err), err)
	}
}

func TestMapErrorPassthrough(t *testing.T) {
	in := operr.BadRequest("first must not exceed 10000")
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected classified error to pass through")
	}
}

func TestMapErrorFallback(t *testing.T) {
	err := MapError("op", errors.New("connection refused"))
	if !operr.IsCode(err, operr.CodeDatabase) {
		t.Fatalf("expected database code, got %q (%v)", operr.CodeOf(err), err)
	}
}
