package eventlog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/data/repos"
	"github.com/example/contentapi/internal/data/store"
	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/domain/operr"
	"github.com/example/contentapi/internal/format"
	"github.com/example/contentapi/internal/platform/logger"
)

// Rendered is one event as it appears in responses: the raw kind plus the
// derived notification classification.
type Rendered struct {
	ID           int64             `json:"id"`
	Typename     string            `json:"__typename"`
	EventType    string            `json:"type"`
	ActorID      int64             `json:"actorId"`
	ObjectID     int64             `json:"objectId"`
	Instance     string            `json:"instance"`
	Date         string            `json:"date"`
	StringParams map[string]string `json:"stringParameters"`
	UuidParams   map[string]int64  `json:"uuidParameters"`
}

// Reader loads events for the query side.
type Reader struct {
	events repos.EventRepo
	log    *logger.Logger
}

func NewReader(events repos.EventRepo, baseLog *logger.Logger) *Reader {
	return &Reader{events: events, log: baseLog.With("service", "EventReader")}
}

func (r *Reader) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*Rendered, error) {
	const op = "event.get"

	event, err := r.events.GetByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operr.NotFound(op)
		}
		return nil, store.MapError(op, err)
	}
	return r.render(ctx, tx, event)
}

// Page loads a page of events ordered (date desc, id desc). It fetches one
// extra row to report whether more pages exist.
func (r *Reader) Page(ctx context.Context, tx *gorm.DB, first int, after *int64, filter repos.EventFilter) ([]Rendered, bool, error) {
	const op = "event.page"

	events, err := r.events.Page(ctx, tx, first+1, after, filter)
	if err != nil {
		return nil, false, store.MapError(op, err)
	}
	hasNext := len(events) > first
	if hasNext {
		events = events[:first]
	}

	rendered := make([]Rendered, 0, len(events))
	for i := range events {
		out, err := r.render(ctx, tx, &events[i])
		if err != nil {
			return nil, false, err
		}
		rendered = append(rendered, *out)
	}
	return rendered, hasNext, nil
}

func (r *Reader) render(ctx context.Context, tx *gorm.DB, event *domain.EventLog) (*Rendered, error) {
	const op = "event.render"

	eventType, err := domain.ParseEventType(event.EventType)
	if err != nil {
		return nil, operr.Wrap(operr.CodeUnsupportedType, op, err)
	}
	params, err := r.events.Parameters(ctx, tx, event.ID)
	if err != nil {
		return nil, store.MapError(op, err)
	}

	stringParams := make(map[string]string)
	uuidParams := make(map[string]int64)
	for _, param := range params {
		switch {
		case param.StringValue != nil:
			stringParams[param.Name] = *param.StringValue
		case param.UuidValue != nil:
			uuidParams[param.Name] = *param.UuidValue
		}
	}

	return &Rendered{
		ID:           event.ID,
		Typename:     string(eventType.NotificationType()),
		EventType:    string(eventType),
		ActorID:      event.ActorID,
		ObjectID:     event.UuidID,
		Instance:     event.Instance,
		Date:         format.ISO(event.Date),
		StringParams: stringParams,
		UuidParams:   uuidParams,
	}, nil
}
