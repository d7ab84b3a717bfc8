package messages

import (
	"context"
	"errors"
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
)

// maxDescriptionLength caps user profile descriptions, matching the legacy
// column size.
const maxDescriptionLength = 64_000

// instanceHopLimit bounds the object walk when deriving the instance of an
// event (comment -> thread -> discussed entity or page).
const instanceHopLimit = 3

// moveHopLimit bounds the ancestor walk guarding taxonomy moves against
// cycles, matching the resolver's ancestor bound.
const moveHopLimit = 20

// MutationService implements the write side of the message catalogue. Every
// handler runs inside the transaction the dispatcher opened; events appended
// through the writer commit or roll back together with the data change.
type MutationService struct {
	uuids         repos.UuidRepo
	entities      repos.EntityRepo
	taxonomy      repos.TaxonomyRepo
	comments      repos.CommentRepo
	pages         repos.PageRepo
	users         repos.UserRepo
	subscriptions repos.SubscriptionRepo
	writer        *eventlog.Writer
	identity      *resolver.IdentityResolver
	log           *logger.Logger
}

func NewMutationService(
	uuids repos.UuidRepo,
	entities repos.EntityRepo,
	taxonomy repos.TaxonomyRepo,
	comments repos.CommentRepo,
	pages repos.PageRepo,
	users repos.UserRepo,
	subscriptions repos.SubscriptionRepo,
	writer *eventlog.Writer,
	identity *resolver.IdentityResolver,
	baseLog *logger.Logger,
) *MutationService {
	return &MutationService{
		uuids:         uuids,
		entities:      entities,
		taxonomy:      taxonomy,
		comments:      comments,
		pages:         pages,
		users:         users,
		subscriptions: subscriptions,
		writer:        writer,
		identity:      identity,
		log:           baseLog.With("service", "MutationService"),
	}
}

type SuccessResult struct {
	Success bool `json:"success"`
}

// requireRow translates a missing precondition row into a BadRequest naming
// the violated constraint. Everything else keeps the store translation.
func requireRow(err error, op string, reason string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return operr.BadRequestf(reason, args...)
	}
	return store.MapError(op, err)
}

// RecordResult is returned by mutations that create an addressable object.
type RecordResult struct {
	Success bool             `json:"success"`
	Record  resolver.Payload `json:"record"`
}

func (s *MutationService) ThreadCreateThread(ctx context.Context, tx *gorm.DB, p ThreadCreateThreadPayload) (interface{}, error) {
	const op = "thread.create"

	if _, err := s.uuids.GetByID(ctx, tx, p.ObjectID); err != nil {
		return nil, requireRow(err, op, "object %d does not exist", p.ObjectID)
	}
	instance, err := s.objectInstance(ctx, tx, p.ObjectID)
	if err != nil {
		return nil, err
	}

	row, err := s.uuids.Create(ctx, tx, domain.DiscriminatorComment)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	thread := &domain.Comment{
		ID:       row.ID,
		AuthorID: p.UserID,
		UuidID:   &p.ObjectID,
		Title:    &p.Title,
		Content:  p.Content,
		Date:     format.ToStorage(time.Now()),
	}
	if err := s.comments.Create(ctx, tx, thread); err != nil {
		return nil, store.MapError(op, err)
	}

	if p.Subscribe {
		if err := s.subscriptions.Save(ctx, tx, row.ID, p.UserID, p.SendEmail); err != nil {
			return nil, store.MapError(op, err)
		}
	}
	if _, err := s.writer.Record(ctx, tx, eventlog.CreateThreadEvent(p.UserID, p.ObjectID, row.ID, instance)); err != nil {
		return nil, err
	}

	record, err := s.identity.Resolve(ctx, tx, row.ID)
	if err != nil {
		return nil, err
	}
	return &RecordResult{Success: true, Record: record}, nil
}

func (s *MutationService) ThreadCreateComment(ctx context.Context, tx *gorm.DB, p ThreadCreateCommentPayload) (interface{}, error) {
	const op = "comment.create"

	thread, err := s.comments.GetByID(ctx, tx, p.ThreadID)
	if err != nil {
		return nil, requireRow(err, op, "thread %d does not exist", p.ThreadID)
	}
	if thread.ParentID != nil {
		return nil, operr.BadRequestf("comment %d is not a thread root", p.ThreadID)
	}
	if thread.Archived {
		return nil, operr.BadRequestf("thread %d is archived", p.ThreadID)
	}
	instance, err := s.objectInstance(ctx, tx, thread.ID)
	if err != nil {
		return nil, err
	}

	row, err := s.uuids.Create(ctx, tx, domain.DiscriminatorComment)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	comment := &domain.Comment{
		ID:       row.ID,
		AuthorID: p.UserID,
		ParentID: &p.ThreadID,
		Content:  p.Content,
		Date:     format.ToStorage(time.Now()),
	}
	if err := s.comments.Create(ctx, tx, comment); err != nil {
		return nil, store.MapError(op, err)
	}

	if p.Subscribe {
		if err := s.subscriptions.Save(ctx, tx, p.ThreadID, p.UserID, p.SendEmail); err != nil {
			return nil, store.MapError(op, err)
		}
	}
	if _, err := s.writer.Record(ctx, tx, eventlog.CreateCommentEvent(p.UserID, p.ThreadID, row.ID, instance)); err != nil {
		return nil, err
	}

	record, err := s.identity.Resolve(ctx, tx, row.ID)
	if err != nil {
		return nil, err
	}
	return &RecordResult{Success: true, Record: record}, nil
}

func (s *MutationService) ThreadSetThreadArchived(ctx context.Context, tx *gorm.DB, p ThreadSetArchivedPayload) (interface{}, error) {
	const op = "thread.setArchived"

	for _, id := range p.IDs {
		thread, err := s.comments.GetByID(ctx, tx, id)
		if err != nil {
			return nil, requireRow(err, op, "thread %d does not exist", id)
		}
		if thread.ParentID != nil {
			return nil, operr.BadRequestf("comment %d is not a thread root", id)
		}
		if thread.Archived == p.Archived {
			continue
		}
		if err := s.comments.SetArchived(ctx, tx, id, p.Archived); err != nil {
			return nil, store.MapError(op, err)
		}
		instance, err := s.objectInstance(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if _, err := s.writer.Record(ctx, tx, eventlog.SetThreadStateEvent(p.UserID, id, p.Archived, instance)); err != nil {
			return nil, err
		}
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) UuidSetState(ctx context.Context, tx *gorm.DB, p UuidSetStatePayload) (interface{}, error) {
	const op = "uuid.setState"

	for _, id := range p.IDs {
		row, err := s.uuids.GetByID(ctx, tx, id)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		discriminator, err := domain.ParseDiscriminator(row.Discriminator)
		if err != nil {
			return nil, operr.Wrap(operr.CodeUnsupportedType, op, err)
		}
		if !discriminator.Trashable() {
			return nil, operr.BadRequestf("cannot set trashed state of %s %d", discriminator, id)
		}
		if row.Trashed == p.Trashed {
			continue
		}
		if err := s.uuids.SetTrashed(ctx, tx, id, p.Trashed); err != nil {
			return nil, store.MapError(op, err)
		}
		instance, err := s.objectInstance(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if _, err := s.writer.Record(ctx, tx, eventlog.SetUuidStateEvent(p.UserID, id, p.Trashed, instance)); err != nil {
			return nil, err
		}
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) EntityCreate(ctx context.Context, tx *gorm.DB, p EntityCreatePayload) (interface{}, error) {
	const op = "entity.create"

	kind, err := domain.ParseEntityKind(p.EntityType)
	if err != nil {
		return nil, operr.Wrap(operr.CodeUnsupportedType, op, err)
	}
	if kind.HasParent() && p.ParentID == nil {
		return nil, operr.BadRequestf("%s entities require a parent entity", kind)
	}
	if !kind.HasParent() && p.TaxonomyTermID == nil {
		return nil, operr.BadRequestf("%s entities require a taxonomy term", kind)
	}

	var (
		parent   *domain.Entity
		term     *domain.TermTaxonomy
		instance domain.Instance
	)
	if kind.HasParent() {
		parent, err = s.entities.GetByID(ctx, tx, *p.ParentID)
		if err != nil {
			return nil, requireRow(err, op, "entity %d does not exist", *p.ParentID)
		}
		instance = domain.Instance(parent.Instance)
	} else {
		term, err = s.taxonomy.GetByID(ctx, tx, *p.TaxonomyTermID)
		if err != nil {
			return nil, requireRow(err, op, "taxonomy term %d does not exist", *p.TaxonomyTermID)
		}
		instance = domain.Instance(term.Instance)
	}

	row, err := s.uuids.Create(ctx, tx, domain.DiscriminatorEntity)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	entity := &domain.Entity{
		ID:        row.ID,
		Type:      string(kind),
		Instance:  string(instance),
		LicenseID: p.LicenseID,
		Date:      format.ToStorage(time.Now()),
	}
	if err := s.entities.Create(ctx, tx, entity); err != nil {
		return nil, store.MapError(op, err)
	}
	if _, err := s.writer.Record(ctx, tx, eventlog.CreateEntityEvent(p.UserID, entity.ID, instance)); err != nil {
		return nil, err
	}

	if parent != nil {
		siblings, err := s.entities.ChildIDs(ctx, tx, parent.ID, nil)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		if err := s.entities.CreateLink(ctx, tx, parent.ID, entity.ID, len(siblings)); err != nil {
			return nil, store.MapError(op, err)
		}
		if _, err := s.writer.Record(ctx, tx, eventlog.CreateEntityLinkEvent(p.UserID, parent.ID, entity.ID, instance)); err != nil {
			return nil, err
		}
	}
	if term != nil {
		existing, err := s.taxonomy.EntityIDs(ctx, tx, term.ID)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		if err := s.taxonomy.LinkEntity(ctx, tx, term.ID, entity.ID, len(existing)); err != nil {
			return nil, store.MapError(op, err)
		}
		if _, err := s.writer.Record(ctx, tx, eventlog.CreateTaxonomyLinkEvent(p.UserID, term.ID, entity.ID, instance)); err != nil {
			return nil, err
		}
	}

	if len(p.Fields) > 0 {
		revRow, err := s.uuids.Create(ctx, tx, domain.DiscriminatorEntityRevision)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		revision := &domain.EntityRevision{
			ID:           revRow.ID,
			AuthorID:     p.UserID,
			RepositoryID: entity.ID,
			Date:         format.ToStorage(time.Now()),
		}
		if err := s.entities.CreateRevision(ctx, tx, revision, p.Fields); err != nil {
			return nil, store.MapError(op, err)
		}
		if err := s.entities.SetCurrentRevision(ctx, tx, entity.ID, revRow.ID); err != nil {
			return nil, store.MapError(op, err)
		}
		if _, err := s.writer.Record(ctx, tx, eventlog.CreateEntityRevisionEvent(p.UserID, entity.ID, revRow.ID, instance)); err != nil {
			return nil, err
		}
	}

	record, err := s.identity.Resolve(ctx, tx, entity.ID)
	if err != nil {
		return nil, err
	}
	return &RecordResult{Success: true, Record: record}, nil
}

func (s *MutationService) EntitySetLicense(ctx context.Context, tx *gorm.DB, p EntitySetLicensePayload) (interface{}, error) {
	const op = "entity.setLicense"

	entity, err := s.entities.GetByID(ctx, tx, p.EntityID)
	if err != nil {
		return nil, requireRow(err, op, "entity %d does not exist", p.EntityID)
	}
	if entity.LicenseID == p.LicenseID {
		return &SuccessResult{Success: true}, nil
	}
	if err := s.entities.SetLicense(ctx, tx, entity.ID, p.LicenseID); err != nil {
		return nil, store.MapError(op, err)
	}

	event := eventlog.SetLicenseEvent(p.UserID, entity.ID, domain.Instance(entity.Instance))
	if _, err := s.writer.Record(ctx, tx, event); err != nil {
		return nil, err
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) EntityCreateLink(ctx context.Context, tx *gorm.DB, p EntityLinkPayload) (interface{}, error) {
	const op = "entity.createLink"

	parent, err := s.entities.GetByID(ctx, tx, p.ParentID)
	if err != nil {
		return nil, requireRow(err, op, "entity %d does not exist", p.ParentID)
	}
	child, err := s.entities.GetByID(ctx, tx, p.ChildID)
	if err != nil {
		return nil, requireRow(err, op, "entity %d does not exist", p.ChildID)
	}
	childKind, err := domain.ParseEntityKind(child.Type)
	if err != nil {
		return nil, operr.Wrap(operr.CodeUnsupportedType, op, err)
	}
	if !childKind.HasParent() {
		return nil, operr.BadRequestf("%s entities cannot hang below another entity", childKind)
	}

	linked, err := s.entities.LinkExists(ctx, tx, parent.ID, child.ID)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	if linked {
		return &SuccessResult{Success: true}, nil
	}
	siblings, err := s.entities.ChildIDs(ctx, tx, parent.ID, nil)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	if err := s.entities.CreateLink(ctx, tx, parent.ID, child.ID, len(siblings)); err != nil {
		return nil, store.MapError(op, err)
	}

	event := eventlog.CreateEntityLinkEvent(p.UserID, parent.ID, child.ID, domain.Instance(parent.Instance))
	if _, err := s.writer.Record(ctx, tx, event); err != nil {
		return nil, err
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) EntityDeleteLink(ctx context.Context, tx *gorm.DB, p EntityLinkPayload) (interface{}, error) {
	const op = "entity.deleteLink"

	parent, err := s.entities.GetByID(ctx, tx, p.ParentID)
	if err != nil {
		return nil, requireRow(err, op, "entity %d does not exist", p.ParentID)
	}
	child, err := s.entities.GetByID(ctx, tx, p.ChildID)
	if err != nil {
		return nil, requireRow(err, op, "entity %d does not exist", p.ChildID)
	}
	linked, err := s.entities.LinkExists(ctx, tx, parent.ID, child.ID)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	if !linked {
		return nil, operr.BadRequestf("entity %d is not linked below entity %d", child.ID, parent.ID)
	}

	childKind, err := domain.ParseEntityKind(child.Type)
	if err != nil {
		return nil, operr.Wrap(operr.CodeUnsupportedType, op, err)
	}
	if childKind.HasParent() {
		links, err := s.entities.ParentLinkCount(ctx, tx, child.ID)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		if links <= 1 {
			return nil, operr.BadRequestf("entity %d would lose its required parent", child.ID)
		}
	}
	if err := s.entities.RemoveLink(ctx, tx, parent.ID, child.ID); err != nil {
		return nil, store.MapError(op, err)
	}

	event := eventlog.RemoveEntityLinkEvent(p.UserID, parent.ID, child.ID, domain.Instance(parent.Instance))
	if _, err := s.writer.Record(ctx, tx, event); err != nil {
		return nil, err
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) EntityAddRevision(ctx context.Context, tx *gorm.DB, p EntityAddRevisionPayload) (interface{}, error) {
	const op = "entity.addRevision"

	entity, err := s.entities.GetByID(ctx, tx, p.EntityID)
	if err != nil {
		return nil, requireRow(err, op, "entity %d does not exist", p.EntityID)
	}

	row, err := s.uuids.Create(ctx, tx, domain.DiscriminatorEntityRevision)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	revision := &domain.EntityRevision{
		ID:           row.ID,
		AuthorID:     p.UserID,
		RepositoryID: entity.ID,
		Date:         format.ToStorage(time.Now()),
	}
	fields := make(map[string]string, len(p.Fields)+1)
	for name, value := range p.Fields {
		fields[name] = value
	}
	if p.Changes != "" {
		fields["changes"] = p.Changes
	}
	if err := s.entities.CreateRevision(ctx, tx, revision, fields); err != nil {
		return nil, store.MapError(op, err)
	}

	if p.SubscribeThis {
		if err := s.subscriptions.Save(ctx, tx, entity.ID, p.UserID, p.SubscribeThisByEmail); err != nil {
			return nil, store.MapError(op, err)
		}
	}
	event := eventlog.CreateEntityRevisionEvent(p.UserID, entity.ID, row.ID, domain.Instance(entity.Instance))
	if _, err := s.writer.Record(ctx, tx, event); err != nil {
		return nil, err
	}

	record, err := s.identity.Resolve(ctx, tx, row.ID)
	if err != nil {
		return nil, err
	}
	return &RecordResult{Success: true, Record: record}, nil
}

func (s *MutationService) EntityRevisionCheckout(ctx context.Context, tx *gorm.DB, p RevisionCheckoutPayload) (interface{}, error) {
	const op = "entity.checkoutRevision"

	revision, err := s.entities.GetRevision(ctx, tx, p.RevisionID)
	if err != nil {
		return nil, requireRow(err, op, "revision %d does not exist", p.RevisionID)
	}
	entity, err := s.entities.GetByID(ctx, tx, revision.RepositoryID)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	if entity.CurrentRevisionID != nil && *entity.CurrentRevisionID == revision.ID {
		return nil, operr.BadRequestf("revision %d is already checked out", revision.ID)
	}

	if err := s.entities.SetCurrentRevision(ctx, tx, entity.ID, revision.ID); err != nil {
		return nil, store.MapError(op, err)
	}
	// A checkout reinstates a previously rejected revision.
	if err := s.uuids.SetTrashed(ctx, tx, revision.ID, false); err != nil {
		return nil, store.MapError(op, err)
	}

	event := eventlog.CheckoutRevisionEvent(p.UserID, entity.ID, revision.ID, p.Reason, domain.Instance(entity.Instance))
	if _, err := s.writer.Record(ctx, tx, event); err != nil {
		return nil, err
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) EntityRevisionReject(ctx context.Context, tx *gorm.DB, p RevisionRejectPayload) (interface{}, error) {
	const op = "entity.rejectRevision"

	revision, err := s.entities.GetRevision(ctx, tx, p.RevisionID)
	if err != nil {
		return nil, requireRow(err, op, "revision %d does not exist", p.RevisionID)
	}
	entity, err := s.entities.GetByID(ctx, tx, revision.RepositoryID)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	if entity.CurrentRevisionID != nil && *entity.CurrentRevisionID == revision.ID {
		return nil, operr.BadRequestf("revision %d is checked out and cannot be rejected", revision.ID)
	}

	// Rejection trashes the revision; the chain itself is append-only.
	if err := s.uuids.SetTrashed(ctx, tx, revision.ID, true); err != nil {
		return nil, store.MapError(op, err)
	}

	event := eventlog.RejectRevisionEvent(p.UserID, entity.ID, revision.ID, p.Reason, domain.Instance(entity.Instance))
	if _, err := s.writer.Record(ctx, tx, event); err != nil {
		return nil, err
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) SubscriptionSet(ctx context.Context, tx *gorm.DB, p SubscriptionSetPayload) (interface{}, error) {
	const op = "subscription.set"

	for _, id := range p.IDs {
		if _, err := s.uuids.GetByID(ctx, tx, id); err != nil {
			return nil, requireRow(err, op, "object %d does not exist", id)
		}
		if p.Subscribe {
			if err := s.subscriptions.Save(ctx, tx, id, p.UserID, p.SendEmail); err != nil {
				return nil, store.MapError(op, err)
			}
			continue
		}
		if err := s.subscriptions.Remove(ctx, tx, id, p.UserID); err != nil {
			return nil, store.MapError(op, err)
		}
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) TaxonomyTermCreate(ctx context.Context, tx *gorm.DB, p TaxonomyTermCreatePayload) (interface{}, error) {
	const op = "taxonomy.createTerm"

	if p.Name == "" {
		return nil, operr.BadRequest("name must not be empty")
	}
	parent, err := s.taxonomy.GetByID(ctx, tx, p.ParentID)
	if err != nil {
		return nil, requireRow(err, op, "taxonomy term %d does not exist", p.ParentID)
	}
	siblings, err := s.taxonomy.ChildTermIDs(ctx, tx, parent.ID)
	if err != nil {
		return nil, store.MapError(op, err)
	}

	row, err := s.uuids.Create(ctx, tx, domain.DiscriminatorTaxonomyTerm)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	term := &domain.TermTaxonomy{
		ID:       row.ID,
		Instance: parent.Instance,
		Name:     p.Name,
		Weight:   len(siblings),
		ParentID: &parent.ID,
	}
	if p.Description != nil {
		term.Description = *p.Description
	}
	if err := s.taxonomy.Create(ctx, tx, term); err != nil {
		return nil, store.MapError(op, err)
	}

	event := eventlog.CreateTaxonomyTermEvent(p.UserID, term.ID, domain.Instance(term.Instance))
	if _, err := s.writer.Record(ctx, tx, event); err != nil {
		return nil, err
	}

	record, err := s.identity.Resolve(ctx, tx, term.ID)
	if err != nil {
		return nil, err
	}
	return &RecordResult{Success: true, Record: record}, nil
}

func (s *MutationService) TaxonomyTermMove(ctx context.Context, tx *gorm.DB, p TaxonomyTermMovePayload) (interface{}, error) {
	const op = "taxonomy.moveTerms"

	destination, err := s.taxonomy.GetByID(ctx, tx, p.Destination)
	if err != nil {
		return nil, requireRow(err, op, "taxonomy term %d does not exist", p.Destination)
	}

	for _, childID := range p.ChildrenIDs {
		if childID == destination.ID {
			return nil, operr.BadRequestf("cannot move taxonomy term %d below itself", childID)
		}
		term, err := s.taxonomy.GetByID(ctx, tx, childID)
		if err != nil {
			return nil, requireRow(err, op, "taxonomy term %d does not exist", childID)
		}
		if term.ParentID == nil {
			return nil, operr.BadRequestf("cannot move taxonomy root %d", childID)
		}
		if err := s.guardMoveCycle(ctx, tx, childID, destination); err != nil {
			return nil, err
		}
		if *term.ParentID == destination.ID {
			continue
		}

		if err := s.taxonomy.SetParent(ctx, tx, childID, destination.ID); err != nil {
			return nil, store.MapError(op, err)
		}
		event := eventlog.SetTaxonomyParentEvent(p.UserID, childID, term.ParentID, &destination.ID, domain.Instance(destination.Instance))
		if _, err := s.writer.Record(ctx, tx, event); err != nil {
			return nil, err
		}
	}
	return &SuccessResult{Success: true}, nil
}

// guardMoveCycle rejects a destination that already hangs below the term
// being moved.
func (s *MutationService) guardMoveCycle(ctx context.Context, tx *gorm.DB, termID int64, destination *domain.TermTaxonomy) error {
	const op = "taxonomy.moveTerms"

	currentID := destination.ParentID
	for hop := 0; currentID != nil && hop < moveHopLimit; hop++ {
		if *currentID == termID {
			return operr.BadRequestf("moving taxonomy term %d below %d would create a cycle", termID, destination.ID)
		}
		parentID, err := s.taxonomy.ParentID(ctx, tx, *currentID)
		if err != nil {
			return store.MapError(op, err)
		}
		currentID = parentID
	}
	return nil
}

func (s *MutationService) TaxonomyTermSetNameAndDescription(ctx context.Context, tx *gorm.DB, p TaxonomyTermSetNameAndDescriptionPayload) (interface{}, error) {
	const op = "taxonomy.setNameAndDescription"

	if p.Name == "" {
		return nil, operr.BadRequest("name must not be empty")
	}
	term, err := s.taxonomy.GetByID(ctx, tx, p.ID)
	if err != nil {
		return nil, requireRow(err, op, "taxonomy term %d does not exist", p.ID)
	}
	if err := s.taxonomy.UpdateNameAndDescription(ctx, tx, term.ID, p.Name, p.Description); err != nil {
		return nil, store.MapError(op, err)
	}

	event := eventlog.SetTaxonomyTermEvent(p.UserID, term.ID, domain.Instance(term.Instance))
	if _, err := s.writer.Record(ctx, tx, event); err != nil {
		return nil, err
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) TaxonomySort(ctx context.Context, tx *gorm.DB, p TaxonomySortPayload) (interface{}, error) {
	const op = "taxonomy.sort"

	term, err := s.taxonomy.GetByID(ctx, tx, p.TaxonomyTermID)
	if err != nil {
		return nil, requireRow(err, op, "taxonomy term %d does not exist", p.TaxonomyTermID)
	}
	entityIDs, err := s.taxonomy.EntityIDs(ctx, tx, term.ID)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	termIDs, err := s.taxonomy.ChildTermIDs(ctx, tx, term.ID)
	if err != nil {
		return nil, store.MapError(op, err)
	}

	isEntity := make(map[int64]bool, len(entityIDs))
	for _, id := range entityIDs {
		isEntity[id] = true
	}
	isTerm := make(map[int64]bool, len(termIDs))
	for _, id := range termIDs {
		isTerm[id] = true
	}

	for position, childID := range p.ChildrenIDs {
		switch {
		case isEntity[childID]:
			if err := s.taxonomy.SetEntityPosition(ctx, tx, term.ID, childID, position); err != nil {
				return nil, store.MapError(op, err)
			}
		case isTerm[childID]:
			if err := s.taxonomy.SetWeight(ctx, tx, childID, position); err != nil {
				return nil, store.MapError(op, err)
			}
		default:
			return nil, operr.BadRequestf("%d is not a child of taxonomy term %d", childID, term.ID)
		}
	}

	event := eventlog.SetTaxonomyTermEvent(p.UserID, term.ID, domain.Instance(term.Instance))
	if _, err := s.writer.Record(ctx, tx, event); err != nil {
		return nil, err
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) TaxonomyCreateEntityLinks(ctx context.Context, tx *gorm.DB, p TaxonomyCreateEntityLinksPayload) (interface{}, error) {
	const op = "taxonomy.createEntityLinks"

	term, err := s.taxonomy.GetByID(ctx, tx, p.TaxonomyTermID)
	if err != nil {
		return nil, requireRow(err, op, "taxonomy term %d does not exist", p.TaxonomyTermID)
	}
	existing, err := s.taxonomy.EntityIDs(ctx, tx, term.ID)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	position := len(existing)

	for _, entityID := range p.EntityIDs {
		if _, err := s.entities.GetByID(ctx, tx, entityID); err != nil {
			return nil, requireRow(err, op, "entity %d does not exist", entityID)
		}
		linked, err := s.taxonomy.EntityLinkExists(ctx, tx, term.ID, entityID)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		if linked {
			continue
		}
		if err := s.taxonomy.LinkEntity(ctx, tx, term.ID, entityID, position); err != nil {
			return nil, store.MapError(op, err)
		}
		position++

		event := eventlog.CreateTaxonomyLinkEvent(p.UserID, term.ID, entityID, domain.Instance(term.Instance))
		if _, err := s.writer.Record(ctx, tx, event); err != nil {
			return nil, err
		}
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) TaxonomyDeleteEntityLinks(ctx context.Context, tx *gorm.DB, p TaxonomyDeleteEntityLinksPayload) (interface{}, error) {
	const op = "taxonomy.deleteEntityLinks"

	term, err := s.taxonomy.GetByID(ctx, tx, p.TaxonomyTermID)
	if err != nil {
		return nil, requireRow(err, op, "taxonomy term %d does not exist", p.TaxonomyTermID)
	}

	for _, entityID := range p.EntityIDs {
		linked, err := s.taxonomy.EntityLinkExists(ctx, tx, term.ID, entityID)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		if !linked {
			return nil, operr.BadRequestf("entity %d is not linked to taxonomy term %d", entityID, term.ID)
		}
		termIDs, err := s.entities.TaxonomyTermIDs(ctx, tx, entityID)
		if err != nil {
			return nil, store.MapError(op, err)
		}
		if len(termIDs) <= 1 {
			return nil, operr.BadRequestf("entity %d would lose its last taxonomy link", entityID)
		}
		if err := s.taxonomy.UnlinkEntity(ctx, tx, term.ID, entityID); err != nil {
			return nil, store.MapError(op, err)
		}

		event := eventlog.RemoveTaxonomyLinkEvent(p.UserID, term.ID, entityID, domain.Instance(term.Instance))
		if _, err := s.writer.Record(ctx, tx, event); err != nil {
			return nil, err
		}
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) UserSetDescription(ctx context.Context, tx *gorm.DB, p UserSetDescriptionPayload) (interface{}, error) {
	const op = "user.setDescription"

	if len(p.Description) > maxDescriptionLength {
		return nil, operr.BadRequestf("description must not exceed %d bytes", maxDescriptionLength)
	}
	if _, err := s.users.GetByID(ctx, tx, p.UserID); err != nil {
		return nil, requireRow(err, op, "user %d does not exist", p.UserID)
	}
	if err := s.users.SetDescription(ctx, tx, p.UserID, p.Description); err != nil {
		return nil, store.MapError(op, err)
	}
	return &SuccessResult{Success: true}, nil
}

// UserEmailResult echoes back who was changed, for audit logging on the
// caller's side.
type UserEmailResult struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *MutationService) UserSetEmail(ctx context.Context, tx *gorm.DB, p UserSetEmailPayload) (interface{}, error) {
	const op = "user.setEmail"

	user, err := s.users.GetByID(ctx, tx, p.UserID)
	if err != nil {
		return nil, requireRow(err, op, "user %d does not exist", p.UserID)
	}
	if err := s.users.SetEmail(ctx, tx, user.ID, p.Email); err != nil {
		return nil, store.MapError(op, err)
	}
	return &UserEmailResult{Success: true, Username: user.Username, Email: p.Email}, nil
}

func (s *MutationService) UserAddRole(ctx context.Context, tx *gorm.DB, p UserAddRolePayload) (interface{}, error) {
	const op = "user.addRole"

	user, err := s.users.GetByUsername(ctx, tx, p.Username)
	if err != nil {
		return nil, requireRow(err, op, "user %q does not exist", p.Username)
	}
	roleID, err := s.users.EnsureRole(ctx, tx, p.RoleName)
	if err != nil {
		return nil, store.MapError(op, err)
	}
	if err := s.users.AddRole(ctx, tx, user.ID, roleID); err != nil {
		return nil, store.MapError(op, err)
	}
	return &SuccessResult{Success: true}, nil
}

func (s *MutationService) UserRemoveRole(ctx context.Context, tx *gorm.DB, p UserRemoveRolePayload) (interface{}, error) {
	const op = "user.removeRole"

	user, err := s.users.GetByUsername(ctx, tx, p.Username)
	if err != nil {
		return nil, requireRow(err, op, "user %q does not exist", p.Username)
	}
	if err := s.users.RemoveRole(ctx, tx, user.ID, p.RoleName); err != nil {
		return nil, store.MapError(op, err)
	}
	return &SuccessResult{Success: true}, nil
}

// objectInstance derives the language edition an event belongs to by walking
// from the touched object to the entity or page that carries one. Objects
// outside any edition (users, roles) fall back to the default.
func (s *MutationService) objectInstance(ctx context.Context, tx *gorm.DB, id int64) (domain.Instance, error) {
	const op = "instance.derive"

	currentID := id
	for hop := 0; hop < instanceHopLimit; hop++ {
		entity, err := s.entities.GetByID(ctx, tx, currentID)
		if err == nil {
			return domain.Instance(entity.Instance), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", store.MapError(op, err)
		}

		page, err := s.pages.GetByID(ctx, tx, currentID)
		if err == nil {
			return domain.Instance(page.Instance), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", store.MapError(op, err)
		}

		term, err := s.taxonomy.GetByID(ctx, tx, currentID)
		if err == nil {
			return domain.Instance(term.Instance), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", store.MapError(op, err)
		}

		comment, err := s.comments.GetByID(ctx, tx, currentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return "", store.MapError(op, err)
		}
		switch {
		case comment.ParentID != nil:
			currentID = *comment.ParentID
		case comment.UuidID != nil:
			currentID = *comment.UuidID
		default:
			return domain.InstanceEn, nil
		}
	}
	return domain.InstanceEn, nil
}
