package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/platform/logger"
)

// EventFilter narrows an event page. Nil members are ignored.
type EventFilter struct {
	ActorID  *int64
	ObjectID *int64
	Instance *domain.Instance
}

type EventRepo interface {
	// Append writes one immutable event row plus its parameters. The row id
	// is filled in on return. Events are never updated or deleted.
	Append(ctx context.Context, tx *gorm.DB, event *domain.EventLog, params []domain.EventParameter) error
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.EventLog, error)
	Parameters(ctx context.Context, tx *gorm.DB, eventID int64) ([]domain.EventParameter, error)
	// Page returns events ordered (date desc, id desc), after an optional
	// cursor id, fetching at most first rows.
	Page(ctx context.Context, tx *gorm.DB, first int, after *int64, filter EventFilter) ([]domain.EventLog, error)
	// CountByActorAndTypes counts events by one actor across a set of raw
	// types.
	CountByActorAndTypes(ctx context.Context, tx *gorm.DB, actorID int64, types []domain.EventType) (int64, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "EventRepo")}
}

func (r *eventRepo) Append(ctx context.Context, tx *gorm.DB, event *domain.EventLog, params []domain.EventParameter) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(event).Error; err != nil {
		return err
	}
	for i := range params {
		params[i].EventLogID = event.ID
		if err := transaction.WithContext(ctx).Create(&params[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.EventLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var event domain.EventLog
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) Parameters(ctx context.Context, tx *gorm.DB, eventID int64) ([]domain.EventParameter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var params []domain.EventParameter
	if err := transaction.WithContext(ctx).
		Where("event_log_id = ?", eventID).
		Order("id ASC").
		Find(&params).Error; err != nil {
		return nil, err
	}
	return params, nil
}

func (r *eventRepo) Page(ctx context.Context, tx *gorm.DB, first int, after *int64, filter EventFilter) ([]domain.EventLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&domain.EventLog{})
	if after != nil {
		q = q.Where("id < ?", *after)
	}
	if filter.ActorID != nil {
		q = q.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.ObjectID != nil {
		q = q.Where("uuid_id = ?", *filter.ObjectID)
	}
	if filter.Instance != nil {
		q = q.Where("instance = ?", string(*filter.Instance))
	}

	var events []domain.EventLog
	if err := q.Order("date DESC, id DESC").Limit(first).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepo) CountByActorAndTypes(ctx context.Context, tx *gorm.DB, actorID int64, types []domain.EventType) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(types) == 0 {
		return 0, nil
	}
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.EventLog{}).
		Where("actor_id = ? AND event_type IN ?", actorID, names).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
