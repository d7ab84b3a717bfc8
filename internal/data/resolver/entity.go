package resolver

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

// EntityResolver materializes entities and their revision chains.
type EntityResolver struct {
	entities repos.EntityRepo
	taxonomy *TaxonomyResolver
	log      *logger.Logger
}

func NewEntityResolver(entities repos.EntityRepo, taxonomy *TaxonomyResolver, baseLog *logger.Logger) *EntityResolver {
	return &EntityResolver{
		entities: entities,
		taxonomy: taxonomy,
		log:      baseLog.With("resolver", "EntityResolver"),
	}
}

// FetchEntity resolves one entity into its kind-specific payload. The
// revision chain is stored oldest-first and exposed newest-first.
func (r *EntityResolver) FetchEntity(ctx context.Context, tx *gorm.DB, uuidRow *domain.UuidRow) (*EntityPayload, error) {
	const op = "entity.fetch"

	entity, err := r.entities.GetByID(ctx, tx, uuidRow.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operr.NotFound(op)
		}
		return nil, store.MapError(op, err)
	}
	kind, err := domain.ParseEntityKind(entity.Type)
	if err != nil {
		return nil, operr.Wrap(operr.CodeUnsupportedType, op, err)
	}

	var (
		revisionIDs []int64
		termIDs     []int64
		subject     *string
		title       *string
	)
	err = runQueries(ctx, tx,
		func(ctx context.Context, tx *gorm.DB) error {
			var qerr error
			revisionIDs, qerr = r.entities.RevisionIDs(ctx, tx, entity.ID)
			return qerr
		},
		func(ctx context.Context, tx *gorm.DB) error {
			var qerr error
			termIDs, qerr = r.entities.TaxonomyTermIDs(ctx, tx, entity.ID)
			return qerr
		},
		func(ctx context.Context, tx *gorm.DB) error {
			var qerr error
			subject, qerr = r.taxonomy.CanonicalSubjectOfEntity(ctx, tx, entity.ID)
			return qerr
		},
		func(ctx context.Context, tx *gorm.DB) error {
			var qerr error
			title, qerr = r.currentTitle(ctx, tx, entity)
			return qerr
		},
	)
	if err != nil {
		return nil, store.MapError(op, err)
	}

	// Newest first for callers.
	reverse(revisionIDs)

	payload := &EntityPayload{
		BaseUuid: BaseUuid{
			TypenameField: kind.Typename(),
			ID:            entity.ID,
			Trashed:       uuidRow.Trashed,
			Alias:         format.FormatAlias(subject, entity.ID, title),
		},
		Instance:          entity.Instance,
		Date:              format.ISO(entity.Date),
		LicenseID:         entity.LicenseID,
		CurrentRevisionID: entity.CurrentRevisionID,
		RevisionIDs:       revisionIDs,
		TaxonomyTermIDs:   termIDs,
		CanonicalSubject:  subject,
	}
	if err := r.attachKindExtras(ctx, tx, entity, kind, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *EntityResolver) attachKindExtras(ctx context.Context, tx *gorm.DB, entity *domain.Entity, kind domain.EntityKind, payload *EntityPayload) error {
	const op = "entity.fetch"

	switch kind {
	case domain.EntityKindCourse:
		pageKind := domain.EntityKindCoursePage
		pageIDs, err := r.entities.ChildIDs(ctx, tx, entity.ID, &pageKind)
		if err != nil {
			return store.MapError(op, err)
		}
		payload.PageIDs = pageIDs

	case domain.EntityKindExerciseGroup:
		exerciseKind := domain.EntityKindGroupedExercise
		exerciseIDs, err := r.entities.ChildIDs(ctx, tx, entity.ID, &exerciseKind)
		if err != nil {
			return store.MapError(op, err)
		}
		payload.ExerciseIDs = exerciseIDs

	case domain.EntityKindExercise, domain.EntityKindGroupedExercise:
		solutionKind := domain.EntityKindSolution
		solutionIDs, err := r.entities.ChildIDs(ctx, tx, entity.ID, &solutionKind)
		if err != nil {
			return store.MapError(op, err)
		}
		if len(solutionIDs) > 0 {
			payload.SolutionID = &solutionIDs[0]
		}

	case domain.EntityKindCoursePage, domain.EntityKindSolution:
		if err := r.attachRequiredParent(ctx, tx, entity, payload); err != nil {
			return err
		}
	}

	// Grouped exercises carry both a solution child and a required parent.
	if kind == domain.EntityKindGroupedExercise {
		if err := r.attachRequiredParent(ctx, tx, entity, payload); err != nil {
			return err
		}
	}
	return nil
}

// attachRequiredParent loads the inbound link parent. Exactly one parent is
// required; several parents silently use the first by link order, a known
// ambiguity in the stored data.
func (r *EntityResolver) attachRequiredParent(ctx context.Context, tx *gorm.DB, entity *domain.Entity, payload *EntityPayload) error {
	parentID, err := r.entities.ParentID(ctx, tx, entity.ID)
	if err != nil {
		return store.MapError("entity.fetch", err)
	}
	if parentID == nil {
		return operr.MissingRequiredParent("entity.fetch", entity.ID, entity.Type)
	}
	payload.ParentID = parentID
	return nil
}

func (r *EntityResolver) currentTitle(ctx context.Context, tx *gorm.DB, entity *domain.Entity) (*string, error) {
	if entity.CurrentRevisionID == nil {
		return nil, nil
	}
	fields, err := r.entities.RevisionFields(ctx, tx, *entity.CurrentRevisionID)
	if err != nil {
		return nil, err
	}
	title, ok := fields["title"]
	if !ok || title == "" {
		return nil, nil
	}
	return &title, nil
}

// FetchRevision resolves one entity revision, projecting its free-form field
// map into the concrete shape of the owning entity's kind. Unmapped legacy
// kinds keep the raw field map plus content.
func (r *EntityResolver) FetchRevision(ctx context.Context, tx *gorm.DB, uuidRow *domain.UuidRow) (*EntityRevisionPayload, error) {
	const op = "entityRevision.fetch"

	revision, err := r.entities.GetRevision(ctx, tx, uuidRow.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operr.NotFound(op)
		}
		return nil, store.MapError(op, err)
	}

	var (
		entity *domain.Entity
		fields map[string]string
	)
	err = runQueries(ctx, tx,
		func(ctx context.Context, tx *gorm.DB) error {
			var qerr error
			entity, qerr = r.entities.GetByID(ctx, tx, revision.RepositoryID)
			return qerr
		},
		func(ctx context.Context, tx *gorm.DB) error {
			var qerr error
			fields, qerr = r.entities.RevisionFields(ctx, tx, revision.ID)
			return qerr
		},
	)
	if err != nil {
		return nil, store.MapError(op, err)
	}

	// Legacy entity kinds without a concrete revision shape fall back to the
	// generic projection instead of failing the fetch.
	kind, kindErr := domain.ParseEntityKind(entity.Type)
	typename := "GenericRevision"
	if kindErr == nil {
		typename = kind.RevisionTypename()
	}

	payload := &EntityRevisionPayload{
		BaseUuid: BaseUuid{
			TypenameField: typename,
			ID:            revision.ID,
			Trashed:       uuidRow.Trashed,
			Alias:         format.RevisionAlias(revision.RepositoryID, revision.ID),
		},
		AuthorID:     revision.AuthorID,
		RepositoryID: revision.RepositoryID,
		Date:         format.ISO(revision.Date),
	}
	if kindErr != nil {
		payload.Content = fields["content"]
		payload.Fields = fields
		return payload, nil
	}
	projectRevisionFields(payload, kind, fields)
	return payload, nil
}

func projectRevisionFields(payload *EntityRevisionPayload, kind domain.EntityKind, fields map[string]string) {
	get := func(key string) string { return fields[key] }

	switch kind {
	case domain.EntityKindApplet:
		payload.URL = get("url")
		payload.Title = get("title")
		payload.Content = get("content")
		payload.Changes = get("changes")
		payload.MetaTitle = get("meta_title")
		payload.MetaDescription = get("meta_description")
	case domain.EntityKindArticle:
		payload.Title = get("title")
		payload.Content = get("content")
		payload.Changes = get("changes")
		payload.MetaTitle = get("meta_title")
		payload.MetaDescription = get("meta_description")
	case domain.EntityKindCourse:
		payload.Title = get("title")
		payload.Content = get("content")
		payload.Changes = get("changes")
		payload.MetaDescription = get("meta_description")
	case domain.EntityKindCoursePage:
		payload.Title = get("title")
		payload.Content = get("content")
		payload.Changes = get("changes")
	case domain.EntityKindEvent:
		payload.Title = get("title")
		payload.Content = get("content")
		payload.Changes = get("changes")
		payload.MetaTitle = get("meta_title")
		payload.MetaDescription = get("meta_description")
	case domain.EntityKindVideo:
		payload.URL = get("url")
		payload.Title = get("title")
		payload.Content = get("content")
		payload.Changes = get("changes")
	case domain.EntityKindExercise, domain.EntityKindExerciseGroup,
		domain.EntityKindGroupedExercise, domain.EntityKindSolution:
		payload.Content = get("content")
		payload.Changes = get("changes")
	}
}

func reverse(ids []int64) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}
