package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/platform/logger"
)

// PageRepo also covers the small legacy tables that only ever see single-row
// lookups (attachments, blog posts).
type PageRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.PageRepository, error)
	GetRevision(ctx context.Context, tx *gorm.DB, id int64) (*domain.PageRevision, error)
	RevisionIDs(ctx context.Context, tx *gorm.DB, pageID int64) ([]int64, error)
	GetAttachment(ctx context.Context, tx *gorm.DB, id int64) (*domain.Attachment, error)
	GetBlogPost(ctx context.Context, tx *gorm.DB, id int64) (*domain.BlogPost, error)
}

type pageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPageRepo(db *gorm.DB, baseLog *logger.Logger) PageRepo {
	return &pageRepo{db: db, log: baseLog.With("repo", "PageRepo")}
}

func (r *pageRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.PageRepository, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var page domain.PageRepository
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepo) GetRevision(ctx context.Context, tx *gorm.DB, id int64) (*domain.PageRevision, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var revision domain.PageRevision
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&revision).Error; err != nil {
		return nil, err
	}
	return &revision, nil
}

func (r *pageRepo) RevisionIDs(ctx context.Context, tx *gorm.DB, pageID int64) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []int64
	if err := transaction.WithContext(ctx).
		Model(&domain.PageRevision{}).
		Where("page_repository_id = ?", pageID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *pageRepo) GetAttachment(ctx context.Context, tx *gorm.DB, id int64) (*domain.Attachment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var attachment domain.Attachment
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *pageRepo) GetBlogPost(ctx context.Context, tx *gorm.DB, id int64) (*domain.BlogPost, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var post domain.BlogPost
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}
