package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/domain/operr"
)

// TxRunner provides the shared transaction boundary for mutation handlers.
// Everything one message writes happens inside a single InTx call.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return operr.New(operr.CodeDatabase, "store.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(fn)
}
