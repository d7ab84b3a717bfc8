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

// maxAncestorHops bounds the upward walk through the taxonomy tree. The
// store cannot express recursive queries, so the walk is an explicit loop;
// production trees stay well under this depth, and exceeding it means the
// tree data is broken.
const maxAncestorHops = 20

// maxEntityLinkHops bounds the hop count from an entity up through
// entity_link parents when searching for a tagged taxonomy term.
const maxEntityLinkHops = 2

// TaxonomyResolver walks the taxonomy tree stored in term_taxonomy.
type TaxonomyResolver struct {
	taxonomy repos.TaxonomyRepo
	entities repos.EntityRepo
	log      *logger.Logger
}

func NewTaxonomyResolver(taxonomy repos.TaxonomyRepo, entities repos.EntityRepo, baseLog *logger.Logger) *TaxonomyResolver {
	return &TaxonomyResolver{
		taxonomy: taxonomy,
		entities: entities,
		log:      baseLog.With("resolver", "TaxonomyResolver"),
	}
}

// FetchTerm resolves one taxonomy node with its combined children list:
// tagged entities first (stored position order), then child terms (weight
// order).
func (r *TaxonomyResolver) FetchTerm(ctx context.Context, tx *gorm.DB, uuidRow *domain.UuidRow) (*TaxonomyTermPayload, error) {
	const op = "taxonomy.fetchTerm"

	term, err := r.taxonomy.GetByID(ctx, tx, uuidRow.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, operr.NotFound(op)
		}
		return nil, store.MapError(op, err)
	}

	var (
		entityIDs []int64
		termIDs   []int64
		subject   *string
	)
	err = runQueries(ctx, tx,
		func(ctx context.Context, tx *gorm.DB) error {
			var qerr error
			entityIDs, qerr = r.taxonomy.EntityIDs(ctx, tx, term.ID)
			return qerr
		},
		func(ctx context.Context, tx *gorm.DB) error {
			var qerr error
			termIDs, qerr = r.taxonomy.ChildTermIDs(ctx, tx, term.ID)
			return qerr
		},
		func(ctx context.Context, tx *gorm.DB) error {
			var qerr error
			subject, qerr = r.CanonicalSubject(ctx, tx, term.ID)
			return qerr
		},
	)
	if err != nil {
		return nil, store.MapError(op, err)
	}

	children := make([]int64, 0, len(entityIDs)+len(termIDs))
	children = append(children, entityIDs...)
	children = append(children, termIDs...)

	name := term.Name
	return &TaxonomyTermPayload{
		BaseUuid: BaseUuid{
			TypenameField: "TaxonomyTerm",
			ID:            term.ID,
			Trashed:       uuidRow.Trashed,
			Alias:         format.FormatAlias(subject, term.ID, &name),
		},
		Name:        term.Name,
		Description: term.Description,
		Weight:      term.Weight,
		ParentID:    term.ParentID,
		ChildrenIDs: children,
	}, nil
}

// CanonicalSubject walks from termID toward the root and returns the name of
// the root's direct child on that path, the "subject" branch the term lives
// under. Terms at or above subject depth resolve to nil. The walk is bounded;
// running past the bound means a malformed tree and surfaces as an error.
func (r *TaxonomyResolver) CanonicalSubject(ctx context.Context, tx *gorm.DB, termID int64) (*string, error) {
	const op = "taxonomy.canonicalSubject"

	current := termID
	var previous *int64

	for hop := 0; hop < maxAncestorHops; hop++ {
		parent, err := r.taxonomy.ParentID(ctx, tx, current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Dangling parent pointer; no root-reachable chain.
				return nil, nil
			}
			return nil, store.MapError(op, err)
		}
		if parent == nil {
			// current is the synthetic root; the subject is the node walked
			// through directly below it. The queried term itself does not
			// count as its own subject.
			return r.subjectNameFrom(ctx, tx, termID, previous)
		}
		id := current
		previous = &id
		current = *parent
	}

	return nil, operr.New(operr.CodeDatabase, op, "taxonomy ancestor chain exceeds depth bound", nil)
}

func (r *TaxonomyResolver) subjectNameFrom(ctx context.Context, tx *gorm.DB, termID int64, subjectID *int64) (*string, error) {
	if subjectID == nil || *subjectID == termID {
		return nil, nil
	}
	term, err := r.taxonomy.GetByID(ctx, tx, *subjectID)
	if err != nil {
		return nil, store.MapError("taxonomy.canonicalSubject", err)
	}
	name := term.Name
	return &name, nil
}

// CanonicalSubjectOfEntity finds one taxonomy term the entity (or a link
// ancestor, up to two hops) is tagged under and resolves its subject. Only
// the first discovered term is used, by stored link order; entities tagged
// under several subjects keep that order-dependent behavior.
func (r *TaxonomyResolver) CanonicalSubjectOfEntity(ctx context.Context, tx *gorm.DB, entityID int64) (*string, error) {
	const op = "taxonomy.canonicalSubjectOfEntity"

	current := entityID
	for hop := 0; hop <= maxEntityLinkHops; hop++ {
		termID, err := r.taxonomy.FirstTermOfEntity(ctx, tx, current)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		if termID != nil {
			return r.CanonicalSubject(ctx, tx, *termID)
		}
		if hop == maxEntityLinkHops {
			break
		}
		parent, err := r.entities.ParentID(ctx, tx, current)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		if parent == nil {
			break
		}
		current = *parent
	}
	return nil, nil
}
