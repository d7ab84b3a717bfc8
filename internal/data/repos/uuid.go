package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/platform/logger"
)

type UuidRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.UuidRow, error)
	Create(ctx context.Context, tx *gorm.DB, discriminator domain.Discriminator) (*domain.UuidRow, error)
	SetTrashed(ctx context.Context, tx *gorm.DB, id int64, trashed bool) error
}

type uuidRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUuidRepo(db *gorm.DB, baseLog *logger.Logger) UuidRepo {
	return &uuidRepo{db: db, log: baseLog.With("repo", "UuidRepo")}
}

func (r *uuidRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.UuidRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row domain.UuidRow
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *uuidRepo) Create(ctx context.Context, tx *gorm.DB, discriminator domain.Discriminator) (*domain.UuidRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	row := &domain.UuidRow{Discriminator: string(discriminator)}
	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *uuidRepo) SetTrashed(ctx context.Context, tx *gorm.DB, id int64, trashed bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&domain.UuidRow{}).
		Where("id = ?", id).
		Update("trashed", trashed).Error
}
