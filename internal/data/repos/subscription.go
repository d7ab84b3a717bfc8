package repos

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/format"
	"github.com/example/contentapi/internal/platform/logger"
)

type SubscriptionRepo interface {
	// Save upserts on the (uuid_id, user_id) unique key; an existing pair
	// only has its send_email flag updated.
	Save(ctx context.Context, tx *gorm.DB, objectID, userID int64, sendEmail bool) error
	Remove(ctx context.Context, tx *gorm.DB, objectID, userID int64) error
	// SubscribersOf returns all subscriptions on one object.
	SubscribersOf(ctx context.Context, tx *gorm.DB, objectID int64) ([]domain.Subscription, error)
	ByUserID(ctx context.Context, tx *gorm.DB, userID int64) ([]domain.Subscription, error)
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return &subscriptionRepo{db: db, log: baseLog.With("repo", "SubscriptionRepo")}
}

func (r *subscriptionRepo) Save(ctx context.Context, tx *gorm.DB, objectID, userID int64, sendEmail bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	sub := &domain.Subscription{
		UuidID:    objectID,
		UserID:    userID,
		SendEmail: sendEmail,
		Date:      format.ToStorage(time.Now()),
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uuid_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"send_email"}),
		}).
		Create(sub).Error
}

func (r *subscriptionRepo) Remove(ctx context.Context, tx *gorm.DB, objectID, userID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("uuid_id = ? AND user_id = ?", objectID, userID).
		Delete(&domain.Subscription{}).Error
}

func (r *subscriptionRepo) SubscribersOf(ctx context.Context, tx *gorm.DB, objectID int64) ([]domain.Subscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var subs []domain.Subscription
	if err := transaction.WithContext(ctx).
		Where("uuid_id = ?", objectID).
		Order("user_id ASC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *subscriptionRepo) ByUserID(ctx context.Context, tx *gorm.DB, userID int64) ([]domain.Subscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var subs []domain.Subscription
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("uuid_id ASC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
