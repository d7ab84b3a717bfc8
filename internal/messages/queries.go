package messages

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/data/eventlog"
	"github.com/example/contentapi/internal/data/repos"
	"github.com/example/contentapi/internal/data/resolver"
	"github.com/example/contentapi/internal/data/store"
	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/domain/operr"
	"github.com/example/contentapi/internal/format"
	"github.com/example/contentapi/internal/platform/logger"
	"golang.org/x/sync/errgroup"
)

// QueryService implements the read side of the message catalogue. Handlers
// run with tx == nil on the shared pool, so independent lookups inside one
// query may fan out concurrently.
type QueryService struct {
	identity *resolver.IdentityResolver
	entities repos.EntityRepo
	taxonomy repos.TaxonomyRepo
	events   repos.EventRepo
	reader   *eventlog.Reader
	log      *logger.Logger
}

func NewQueryService(
	identity *resolver.IdentityResolver,
	entities repos.EntityRepo,
	taxonomy repos.TaxonomyRepo,
	events repos.EventRepo,
	reader *eventlog.Reader,
	baseLog *logger.Logger,
) *QueryService {
	return &QueryService{
		identity: identity,
		entities: entities,
		taxonomy: taxonomy,
		events:   events,
		reader:   reader,
		log:      baseLog.With("service", "QueryService"),
	}
}

func (s *QueryService) Uuid(ctx context.Context, tx *gorm.DB, p UuidQueryPayload) (interface{}, error) {
	return s.identity.Resolve(ctx, tx, p.ID)
}

type EventsPage struct {
	Events      []eventlog.Rendered `json:"events"`
	HasNextPage bool                `json:"hasNextPage"`
}

func (s *QueryService) Events(ctx context.Context, tx *gorm.DB, p EventsQueryPayload) (interface{}, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	instance, err := optionalInstance(p.Instance)
	if err != nil {
		return nil, err
	}

	filter := repos.EventFilter{ActorID: p.ActorID, ObjectID: p.ObjectID, Instance: instance}
	events, hasNext, err := s.reader.Page(ctx, tx, p.First, p.After, filter)
	if err != nil {
		return nil, err
	}
	return &EventsPage{Events: events, HasNextPage: hasNext}, nil
}

func (s *QueryService) Event(ctx context.Context, tx *gorm.DB, p EventQueryPayload) (interface{}, error) {
	return s.reader.GetByID(ctx, tx, p.ID)
}

type EntityIDPage struct {
	EntityIDs   []int64 `json:"entityIds"`
	HasNextPage bool    `json:"hasNextPage"`
}

func (s *QueryService) Entities(ctx context.Context, tx *gorm.DB, p EntitiesQueryPayload) (interface{}, error) {
	const op = "entities.page"

	if err := p.Validate(); err != nil {
		return nil, err
	}
	instance, err := optionalInstance(p.Instance)
	if err != nil {
		return nil, err
	}

	ids, err := s.entities.IDPage(ctx, tx, p.First+1, p.After, instance)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	hasNext := len(ids) > p.First
	if hasNext {
		ids = ids[:p.First]
	}
	return &EntityIDPage{EntityIDs: ids, HasNextPage: hasNext}, nil
}

// EntityMetadata is one bulk-harvesting row: identity, typed kind and the
// dates an indexer needs to decide whether to refetch.
type EntityMetadata struct {
	ID           int64   `json:"id"`
	Typename     string  `json:"__typename"`
	Instance     string  `json:"instance"`
	Title        *string `json:"title"`
	DateCreated  string  `json:"dateCreated"`
	DateModified string  `json:"dateModified"`
	LicenseID    int64   `json:"licenseId"`
}

type EntityMetadataPage struct {
	Entities    []EntityMetadata `json:"entities"`
	HasNextPage bool             `json:"hasNextPage"`
}

func (s *QueryService) EntitiesMetadata(ctx context.Context, tx *gorm.DB, p EntitiesMetadataQueryPayload) (interface{}, error) {
	const op = "entities.metadata"

	if err := p.Validate(); err != nil {
		return nil, err
	}
	instance, err := optionalInstance(p.Instance)
	if err != nil {
		return nil, err
	}
	var modifiedAfter *time.Time
	if p.ModifiedAfter != nil {
		parsed, err := time.Parse(time.RFC3339, *p.ModifiedAfter)
		if err != nil {
			return nil, operr.BadRequestf("modifiedAfter must be RFC 3339: %s", err.Error())
		}
		modifiedAfter = &parsed
	}

	rows, err := s.entities.MetadataPage(ctx, tx, p.First+1, p.After, instance, modifiedAfter)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	hasNext := len(rows) > p.First
	if hasNext {
		rows = rows[:p.First]
	}

	out := make([]EntityMetadata, len(rows))
	group, gctx := errgroup.WithContext(ctx)
	for i := range rows {
		i := i
		group.Go(func() error {
			meta, err := s.metadataRow(gctx, tx, &rows[i])
			if err != nil {
				return err
			}
			out[i] = *meta
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &EntityMetadataPage{Entities: out, HasNextPage: hasNext}, nil
}

func (s *QueryService) metadataRow(ctx context.Context, tx *gorm.DB, entity *domain.Entity) (*EntityMetadata, error) {
	const op = "entities.metadata"

	meta := &EntityMetadata{
		ID:           entity.ID,
		Instance:     entity.Instance,
		DateCreated:  format.ISO(entity.Date),
		DateModified: format.ISO(entity.Date),
		LicenseID:    entity.LicenseID,
	}
	kind, err := domain.ParseEntityKind(entity.Type)
	if err != nil {
		return nil, operr.Wrap(operr.CodeUnsupportedType, op, err)
	}
	meta.Typename = kind.Typename()

	if entity.CurrentRevisionID != nil {
		revision, err := s.entities.GetRevision(ctx, tx, *entity.CurrentRevisionID)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		meta.DateModified = format.ISO(revision.Date)

		fields, err := s.entities.RevisionFields(ctx, tx, revision.ID)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		if title, ok := fields["title"]; ok {
			meta.Title = &title
		}
	}
	return meta, nil
}

// UserActivity buckets a user's event counts the way profile pages group
// them.
type UserActivity struct {
	Edits    int64 `json:"edits"`
	Reviews  int64 `json:"reviews"`
	Comments int64 `json:"comments"`
	Taxonomy int64 `json:"taxonomy"`
}

func (s *QueryService) UserActivityByType(ctx context.Context, tx *gorm.DB, p UserActivityByTypeQueryPayload) (interface{}, error) {
	const op = "user.activity"

	type bucket struct {
		target *int64
		types  []domain.EventType
	}

	activity := &UserActivity{}
	buckets := []bucket{
		{&activity.Edits, []domain.EventType{domain.EventTypeCreateEntityRevision}},
		{&activity.Reviews, []domain.EventType{domain.EventTypeCheckoutRevision, domain.EventTypeRejectRevision}},
		{&activity.Comments, []domain.EventType{domain.EventTypeCreateThread, domain.EventTypeCreateComment}},
		{&activity.Taxonomy, []domain.EventType{
			domain.EventTypeCreateTaxonomyTerm,
			domain.EventTypeSetTaxonomyTerm,
			domain.EventTypeCreateTaxonomyLink,
			domain.EventTypeRemoveTaxonomyLink,
			domain.EventTypeSetTaxonomyParent,
		}},
	}

	group, gctx := errgroup.WithContext(ctx)
	for _, bucket := range buckets {
		bucket := bucket
		group.Go(func() error {
			count, err := s.events.CountByActorAndTypes(gctx, tx, p.UserID, bucket.types)
			if err != nil {
				return store.MapError(op, err)
			}
			*bucket.target = count
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return activity, nil
}

// Subject is one top-level taxonomy term directly below an instance root.
type Subject struct {
	TaxonomyTermID int64  `json:"taxonomyTermId"`
	Name           string `json:"name"`
	Instance       string `json:"instance"`
}

type SubjectsResult struct {
	Subjects []Subject `json:"subjects"`
}

func (s *QueryService) Subjects(ctx context.Context, tx *gorm.DB, p SubjectsQueryPayload) (interface{}, error) {
	const op = "subjects.list"

	instance, err := optionalInstance(p.Instance)
	if err != nil {
		return nil, err
	}

	rootIDs, err := s.taxonomy.RootIDs(ctx, tx, instance)
	if err != nil {
		return nil, store.MapError(op, err)
	}

	subjects := make([]Subject, 0)
	for _, rootID := range rootIDs {
		childIDs, err := s.taxonomy.ChildTermIDs(ctx, tx, rootID)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		for _, childID := range childIDs {
			term, err := s.taxonomy.GetByID(ctx, tx, childID)
			if err != nil {
				return nil, store.MapError(op, err)
			}
			subjects = append(subjects, Subject{
				TaxonomyTermID: term.ID,
				Name:           term.Name,
				Instance:       term.Instance,
			})
		}
	}
	return &SubjectsResult{Subjects: subjects}, nil
}

type UnrevisedEntitiesResult struct {
	UnrevisedEntityIDs []int64 `json:"unrevisedEntityIds"`
}

func (s *QueryService) UnrevisedEntities(ctx context.Context, tx *gorm.DB, p UnrevisedEntitiesQueryPayload) (interface{}, error) {
	const op = "entities.unrevised"

	instance, err := optionalInstance(p.Instance)
	if err != nil {
		return nil, err
	}

	ids, err := s.entities.UnrevisedIDs(ctx, tx, instance)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	return &UnrevisedEntitiesResult{UnrevisedEntityIDs: ids}, nil
}

func optionalInstance(raw *string) (*domain.Instance, error) {
	if raw == nil {
		return nil, nil
	}
	instance, err := domain.ParseInstance(*raw)
	if err != nil {
		return nil, operr.Wrap(operr.CodeInvalidInstance, "instance.parse", err)
	}
	return &instance, nil
}
