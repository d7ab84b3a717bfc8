package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/format"
	"github.com/example/contentapi/internal/platform/logger"
)

type EntityRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Entity, error)
	// RevisionIDs returns the revision chain in storage order (oldest first).
	RevisionIDs(ctx context.Context, tx *gorm.DB, entityID int64) ([]int64, error)
	TaxonomyTermIDs(ctx context.Context, tx *gorm.DB, entityID int64) ([]int64, error)
	// ChildIDs returns linked children ordered by link position, optionally
	// restricted to one entity kind.
	ChildIDs(ctx context.Context, tx *gorm.DB, parentID int64, kind *domain.EntityKind) ([]int64, error)
	// ParentID returns the first linked parent by link insertion order, or
	// nil when no inbound link exists.
	ParentID(ctx context.Context, tx *gorm.DB, childID int64) (*int64, error)
	Create(ctx context.Context, tx *gorm.DB, entity *domain.Entity) error
	CreateLink(ctx context.Context, tx *gorm.DB, parentID, childID int64, position int) error
	RemoveLink(ctx context.Context, tx *gorm.DB, parentID, childID int64) error
	LinkExists(ctx context.Context, tx *gorm.DB, parentID, childID int64) (bool, error)
	// ParentLinkCount counts inbound links of a child entity.
	ParentLinkCount(ctx context.Context, tx *gorm.DB, childID int64) (int64, error)
	SetCurrentRevision(ctx context.Context, tx *gorm.DB, entityID, revisionID int64) error
	SetLicense(ctx context.Context, tx *gorm.DB, entityID, licenseID int64) error
	// IDPage returns entity ids newest first, after an optional cursor id.
	IDPage(ctx context.Context, tx *gorm.DB, first int, after *int64, instance *domain.Instance) ([]int64, error)
	// MetadataPage returns entity rows in id order for bulk harvesting,
	// optionally restricted to entities touched after a point in time.
	MetadataPage(ctx context.Context, tx *gorm.DB, first int, after *int64, instance *domain.Instance, modifiedAfter *time.Time) ([]domain.Entity, error)
	// UnrevisedIDs returns entities owning a revision newer than the one
	// currently checked out.
	UnrevisedIDs(ctx context.Context, tx *gorm.DB, instance *domain.Instance) ([]int64, error)

	GetRevision(ctx context.Context, tx *gorm.DB, id int64) (*domain.EntityRevision, error)
	RevisionFields(ctx context.Context, tx *gorm.DB, revisionID int64) (map[string]string, error)
	CreateRevision(ctx context.Context, tx *gorm.DB, revision *domain.EntityRevision, fields map[string]string) error
}

type entityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntityRepo(db *gorm.DB, baseLog *logger.Logger) EntityRepo {
	return &entityRepo{db: db, log: baseLog.With("repo", "EntityRepo")}
}

func (r *entityRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var entity domain.Entity
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *entityRepo) RevisionIDs(ctx context.Context, tx *gorm.DB, entityID int64) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []int64
	if err := transaction.WithContext(ctx).
		Model(&domain.EntityRevision{}).
		Where("repository_id = ?", entityID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *entityRepo) TaxonomyTermIDs(ctx context.Context, tx *gorm.DB, entityID int64) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []int64
	if err := transaction.WithContext(ctx).
		Model(&domain.TermTaxonomyEntity{}).
		Where("entity_id = ?", entityID).
		Order("id ASC").
		Pluck("term_taxonomy_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *entityRepo) ChildIDs(ctx context.Context, tx *gorm.DB, parentID int64, kind *domain.EntityKind) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Model(&domain.EntityLink{}).
		Joins("JOIN entity ON entity.id = entity_link.child_id").
		Where("entity_link.parent_id = ?", parentID)
	if kind != nil {
		q = q.Where("entity.type = ?", string(*kind))
	}

	var ids []int64
	if err := q.Order("entity_link.position ASC, entity_link.id ASC").
		Pluck("entity_link.child_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *entityRepo) ParentID(ctx context.Context, tx *gorm.DB, childID int64) (*int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var links []domain.EntityLink
	if err := transaction.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("id ASC").
		Limit(1).
		Find(&links).Error; err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, nil
	}
	return &links[0].ParentID, nil
}

func (r *entityRepo) Create(ctx context.Context, tx *gorm.DB, entity *domain.Entity) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(entity).Error
}

func (r *entityRepo) CreateLink(ctx context.Context, tx *gorm.DB, parentID, childID int64, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	link := &domain.EntityLink{ParentID: parentID, ChildID: childID, Position: position}
	return transaction.WithContext(ctx).Create(link).Error
}

func (r *entityRepo) RemoveLink(ctx context.Context, tx *gorm.DB, parentID, childID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("parent_id = ? AND child_id = ?", parentID, childID).
		Delete(&domain.EntityLink{}).Error
}

func (r *entityRepo) LinkExists(ctx context.Context, tx *gorm.DB, parentID, childID int64) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.EntityLink{}).
		Where("parent_id = ? AND child_id = ?", parentID, childID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *entityRepo) ParentLinkCount(ctx context.Context, tx *gorm.DB, childID int64) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.EntityLink{}).
		Where("child_id = ?", childID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *entityRepo) SetCurrentRevision(ctx context.Context, tx *gorm.DB, entityID, revisionID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Entity{}).
		Where("id = ?", entityID).
		Update("current_revision_id", revisionID).Error
}

func (r *entityRepo) SetLicense(ctx context.Context, tx *gorm.DB, entityID, licenseID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Entity{}).
		Where("id = ?", entityID).
		Update("license_id", licenseID).Error
}

func (r *entityRepo) IDPage(ctx context.Context, tx *gorm.DB, first int, after *int64, instance *domain.Instance) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&domain.Entity{})
	if after != nil {
		q = q.Where("id < ?", *after)
	}
	if instance != nil {
		q = q.Where("instance = ?", string(*instance))
	}

	var ids []int64
	if err := q.Order("id DESC").Limit(first).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *entityRepo) MetadataPage(ctx context.Context, tx *gorm.DB, first int, after *int64, instance *domain.Instance, modifiedAfter *time.Time) ([]domain.Entity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&domain.Entity{})
	if after != nil {
		q = q.Where("id > ?", *after)
	}
	if instance != nil {
		q = q.Where("instance = ?", string(*instance))
	}
	if modifiedAfter != nil {
		q = q.Where("date > ?", *modifiedAfter)
	}

	var entities []domain.Entity
	if err := q.Order("id ASC").Limit(first).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *entityRepo) UnrevisedIDs(ctx context.Context, tx *gorm.DB, instance *domain.Instance) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Model(&domain.Entity{}).
		Joins("JOIN entity_revision ON entity_revision.repository_id = entity.id").
		Joins("JOIN uuid ON uuid.id = entity_revision.id AND uuid.trashed = ?", false).
		Where("entity.current_revision_id IS NULL OR entity_revision.id > entity.current_revision_id")
	if instance != nil {
		q = q.Where("entity.instance = ?", string(*instance))
	}

	var ids []int64
	if err := q.Distinct().Order("entity.id ASC").Pluck("entity.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *entityRepo) GetRevision(ctx context.Context, tx *gorm.DB, id int64) (*domain.EntityRevision, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var revision domain.EntityRevision
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&revision).Error; err != nil {
		return nil, err
	}
	return &revision, nil
}

func (r *entityRepo) RevisionFields(ctx context.Context, tx *gorm.DB, revisionID int64) (map[string]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []domain.EntityRevisionField
	if err := transaction.WithContext(ctx).
		Where("entity_revision_id = ?", revisionID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(rows))
	for _, row := range rows {
		fields[row.Field] = row.Value
	}
	return fields, nil
}

func (r *entityRepo) CreateRevision(ctx context.Context, tx *gorm.DB, revision *domain.EntityRevision, fields map[string]string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if revision.Date.IsZero() {
		revision.Date = format.ToStorage(time.Now())
	}
	if err := transaction.WithContext(ctx).Create(revision).Error; err != nil {
		return err
	}
	for field, value := range fields {
		row := &domain.EntityRevisionField{
			EntityRevisionID: revision.ID,
			Field:            field,
			Value:            value,
		}
		if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
			return err
		}
	}
	return nil
}
