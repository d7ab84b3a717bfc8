package eventlog

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/data/repos"
	"github.com/example/contentapi/internal/data/store"
	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/format"
	"github.com/example/contentapi/internal/platform/logger"
)

// Event is one mutation about to be recorded. Handlers build these through
// the constructors in events.go and hand them to the dispatcher's writer.
type Event struct {
	Type         domain.EventType
	ActorID      int64
	ObjectID     int64
	Instance     domain.Instance
	StringParams map[string]string
	UuidParams   map[string]int64
}

// Writer appends immutable event rows and materializes notifications for
// subscribers. An event reaches the subscribers of its object and of every
// uuid parameter (a comment event notifies thread subscribers through its
// "discussion" parameter); the actor never notifies themselves.
type Writer struct {
	events        repos.EventRepo
	subscriptions repos.SubscriptionRepo
	notifications repos.NotificationRepo
	log           *logger.Logger
}

func NewWriter(events repos.EventRepo, subscriptions repos.SubscriptionRepo, notifications repos.NotificationRepo, baseLog *logger.Logger) *Writer {
	return &Writer{
		events:        events,
		subscriptions: subscriptions,
		notifications: notifications,
		log:           baseLog.With("service", "EventWriter"),
	}
}

// Record appends one event row plus parameters and fans out notifications.
// It must run inside the mutation's transaction; a failed append fails the
// whole mutation.
func (w *Writer) Record(ctx context.Context, tx *gorm.DB, ev Event) (*domain.EventLog, error) {
	const op = "event.record"

	row := &domain.EventLog{
		ActorID:   ev.ActorID,
		EventType: string(ev.Type),
		UuidID:    ev.ObjectID,
		Instance:  string(ev.Instance),
		Date:      format.ToStorage(time.Now()),
	}
	params := buildParameters(ev)
	if err := w.events.Append(ctx, tx, row, params); err != nil {
		return nil, store.MapError(op, err)
	}

	if err := w.fanOut(ctx, tx, row, ev); err != nil {
		return nil, err
	}
	w.log.Debug("event recorded", "event_type", string(ev.Type), "object_id", ev.ObjectID)
	return row, nil
}

func buildParameters(ev Event) []domain.EventParameter {
	params := make([]domain.EventParameter, 0, len(ev.StringParams)+len(ev.UuidParams))

	names := make([]string, 0, len(ev.StringParams))
	for name := range ev.StringParams {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := ev.StringParams[name]
		params = append(params, domain.EventParameter{Name: name, StringValue: &value})
	}

	names = names[:0]
	for name := range ev.UuidParams {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := ev.UuidParams[name]
		params = append(params, domain.EventParameter{Name: name, UuidValue: &value})
	}
	return params
}

func (w *Writer) fanOut(ctx context.Context, tx *gorm.DB, row *domain.EventLog, ev Event) error {
	const op = "event.fanout"

	objectIDs := []int64{ev.ObjectID}
	for _, id := range ev.UuidParams {
		objectIDs = append(objectIDs, id)
	}
	sort.Slice(objectIDs, func(i, j int) bool { return objectIDs[i] < objectIDs[j] })

	seenObjects := make(map[int64]bool, len(objectIDs))
	recipients := make(map[int64]domain.Subscription)
	for _, objectID := range objectIDs {
		if seenObjects[objectID] {
			continue
		}
		seenObjects[objectID] = true

		subs, err := w.subscriptions.SubscribersOf(ctx, tx, objectID)
		if err != nil {
			return store.MapError(op, err)
		}
		for _, sub := range subs {
			if sub.UserID == ev.ActorID {
				continue
			}
			if existing, ok := recipients[sub.UserID]; !ok || (!existing.SendEmail && sub.SendEmail) {
				recipients[sub.UserID] = sub
			}
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	ordered := make([]domain.Subscription, 0, len(recipients))
	for _, sub := range recipients {
		ordered = append(ordered, sub)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].UserID < ordered[j].UserID })

	if err := w.notifications.CreateForEvent(ctx, tx, row.ID, ordered); err != nil {
		return store.MapError(op, err)
	}
	return nil
}
