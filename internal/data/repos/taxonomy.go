package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/platform/logger"
)

type TaxonomyRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.TermTaxonomy, error)
	// ChildTermIDs returns direct child terms ordered by weight ascending.
	ChildTermIDs(ctx context.Context, tx *gorm.DB, parentID int64) ([]int64, error)
	// EntityIDs returns entities tagged at the node ordered by stored position.
	EntityIDs(ctx context.Context, tx *gorm.DB, termID int64) ([]int64, error)
	ParentID(ctx context.Context, tx *gorm.DB, termID int64) (*int64, error)
	// RootIDs returns the synthetic roots (terms without a parent), one per
	// instance in practice, optionally restricted to one instance.
	RootIDs(ctx context.Context, tx *gorm.DB, instance *domain.Instance) ([]int64, error)
	// FirstTermOfEntity returns one taxonomy term the entity is tagged under,
	// by stored link order, or nil when untagged.
	FirstTermOfEntity(ctx context.Context, tx *gorm.DB, entityID int64) (*int64, error)
	Create(ctx context.Context, tx *gorm.DB, term *domain.TermTaxonomy) error
	UpdateNameAndDescription(ctx context.Context, tx *gorm.DB, id int64, name string, description *string) error
	SetParent(ctx context.Context, tx *gorm.DB, id, parentID int64) error
	SetWeight(ctx context.Context, tx *gorm.DB, id int64, weight int) error
	LinkEntity(ctx context.Context, tx *gorm.DB, termID, entityID int64, position int) error
	UnlinkEntity(ctx context.Context, tx *gorm.DB, termID, entityID int64) error
	EntityLinkExists(ctx context.Context, tx *gorm.DB, termID, entityID int64) (bool, error)
	SetEntityPosition(ctx context.Context, tx *gorm.DB, termID, entityID int64, position int) error
}

type taxonomyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaxonomyRepo(db *gorm.DB, baseLog *logger.Logger) TaxonomyRepo {
	return &taxonomyRepo{db: db, log: baseLog.With("repo", "TaxonomyRepo")}
}

func (r *taxonomyRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.TermTaxonomy, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var term domain.TermTaxonomy
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&term).Error; err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *taxonomyRepo) ChildTermIDs(ctx context.Context, tx *gorm.DB, parentID int64) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []int64
	if err := transaction.WithContext(ctx).
		Model(&domain.TermTaxonomy{}).
		Where("parent_id = ?", parentID).
		Order("weight ASC, id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *taxonomyRepo) EntityIDs(ctx context.Context, tx *gorm.DB, termID int64) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []int64
	if err := transaction.WithContext(ctx).
		Model(&domain.TermTaxonomyEntity{}).
		Where("term_taxonomy_id = ?", termID).
		Order("position ASC, id ASC").
		Pluck("entity_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *taxonomyRepo) ParentID(ctx context.Context, tx *gorm.DB, termID int64) (*int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var term domain.TermTaxonomy
	if err := transaction.WithContext(ctx).
		Select("id", "parent_id").
		Where("id = ?", termID).
		First(&term).Error; err != nil {
		return nil, err
	}
	return term.ParentID, nil
}

func (r *taxonomyRepo) RootIDs(ctx context.Context, tx *gorm.DB, instance *domain.Instance) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).
		Model(&domain.TermTaxonomy{}).
		Where("parent_id IS NULL")
	if instance != nil {
		query = query.Where("instance = ?", string(*instance))
	}

	var ids []int64
	if err := query.Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *taxonomyRepo) FirstTermOfEntity(ctx context.Context, tx *gorm.DB, entityID int64) (*int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var links []domain.TermTaxonomyEntity
	if err := transaction.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("id ASC").
		Limit(1).
		Find(&links).Error; err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, nil
	}
	return &links[0].TermTaxonomyID, nil
}

func (r *taxonomyRepo) Create(ctx context.Context, tx *gorm.DB, term *domain.TermTaxonomy) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(term).Error
}

func (r *taxonomyRepo) SetParent(ctx context.Context, tx *gorm.DB, id, parentID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.TermTaxonomy{}).
		Where("id = ?", id).
		Update("parent_id", parentID).Error
}

func (r *taxonomyRepo) UpdateNameAndDescription(ctx context.Context, tx *gorm.DB, id int64, name string, description *string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	updates := map[string]interface{}{"name": name}
	if description != nil {
		updates["description"] = *description
	}
	return transaction.WithContext(ctx).
		Model(&domain.TermTaxonomy{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *taxonomyRepo) SetWeight(ctx context.Context, tx *gorm.DB, id int64, weight int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.TermTaxonomy{}).
		Where("id = ?", id).
		Update("weight", weight).Error
}

func (r *taxonomyRepo) LinkEntity(ctx context.Context, tx *gorm.DB, termID, entityID int64, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	link := &domain.TermTaxonomyEntity{
		TermTaxonomyID: termID,
		EntityID:       entityID,
		Position:       position,
	}
	return transaction.WithContext(ctx).Create(link).Error
}

func (r *taxonomyRepo) UnlinkEntity(ctx context.Context, tx *gorm.DB, termID, entityID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("term_taxonomy_id = ? AND entity_id = ?", termID, entityID).
		Delete(&domain.TermTaxonomyEntity{}).Error
}

func (r *taxonomyRepo) EntityLinkExists(ctx context.Context, tx *gorm.DB, termID, entityID int64) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.TermTaxonomyEntity{}).
		Where("term_taxonomy_id = ? AND entity_id = ?", termID, entityID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *taxonomyRepo) SetEntityPosition(ctx context.Context, tx *gorm.DB, termID, entityID int64, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.TermTaxonomyEntity{}).
		Where("term_taxonomy_id = ? AND entity_id = ?", termID, entityID).
		Update("position", position).Error
}
