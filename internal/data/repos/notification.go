package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/format"
	"github.com/example/contentapi/internal/platform/logger"
)

type NotificationRepo interface {
	// CreateForEvent materializes one notification row per recipient.
	CreateForEvent(ctx context.Context, tx *gorm.DB, eventID int64, recipients []domain.Subscription) error
	ByUserID(ctx context.Context, tx *gorm.DB, userID int64) ([]domain.Notification, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (r *notificationRepo) CreateForEvent(ctx context.Context, tx *gorm.DB, eventID int64, recipients []domain.Subscription) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	for _, sub := range recipients {
		row := &domain.Notification{
			UserID:     sub.UserID,
			EventLogID: eventID,
			Email:      sub.SendEmail,
			Date:       format.ToStorage(time.Now()),
		}
		if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *notificationRepo) ByUserID(ctx context.Context, tx *gorm.DB, userID int64) ([]domain.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []domain.Notification
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
