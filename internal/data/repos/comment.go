package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/platform/logger"
)

type CommentRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Comment, error)
	// ChildIDs returns direct replies oldest first.
	ChildIDs(ctx context.Context, tx *gorm.DB, parentID int64) ([]int64, error)
	Create(ctx context.Context, tx *gorm.DB, comment *domain.Comment) error
	SetArchived(ctx context.Context, tx *gorm.DB, id int64, archived bool) error
	// ThreadIDsOf returns thread roots on one object, newest first.
	ThreadIDsOf(ctx context.Context, tx *gorm.DB, objectID int64) ([]int64, error)
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	return &commentRepo{db: db, log: baseLog.With("repo", "CommentRepo")}
}

func (r *commentRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var comment domain.Comment
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepo) ChildIDs(ctx context.Context, tx *gorm.DB, parentID int64) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []int64
	if err := transaction.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("parent_id = ?", parentID).
		Order("date ASC, id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *commentRepo) Create(ctx context.Context, tx *gorm.DB, comment *domain.Comment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(comment).Error
}

func (r *commentRepo) SetArchived(ctx context.Context, tx *gorm.DB, id int64, archived bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ?", id).
		Update("archived", archived).Error
}

func (r *commentRepo) ThreadIDsOf(ctx context.Context, tx *gorm.DB, objectID int64) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []int64
	if err := transaction.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("uuid_id = ? AND parent_id IS NULL", objectID).
		Order("date DESC, id DESC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
