package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/contentapi/internal/domain"
	"github.com/example/contentapi/internal/platform/logger"
)

type UserRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*domain.User, error)
	SetDescription(ctx context.Context, tx *gorm.DB, id int64, description string) error
	SetEmail(ctx context.Context, tx *gorm.DB, id int64, email string) error
	Roles(ctx context.Context, tx *gorm.DB, userID int64) ([]string, error)
	// EnsureRole creates the role row when absent and returns its id.
	EnsureRole(ctx context.Context, tx *gorm.DB, name string) (int64, error)
	AddRole(ctx context.Context, tx *gorm.DB, userID, roleID int64) error
	RemoveRole(ctx context.Context, tx *gorm.DB, userID int64, roleName string) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var user domain.User
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var user domain.User
	if err := transaction.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) SetDescription(ctx context.Context, tx *gorm.DB, id int64, description string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("description", description).Error
}

func (r *userRepo) SetEmail(ctx context.Context, tx *gorm.DB, id int64, email string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("email", email).Error
}

func (r *userRepo) Roles(ctx context.Context, tx *gorm.DB, userID int64) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var names []string
	if err := transaction.WithContext(ctx).
		Model(&domain.RoleUser{}).
		Joins("JOIN role ON role.id = role_user.role_id").
		Where("role_user.user_id = ?", userID).
		Order("role.name ASC").
		Pluck("role.name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (r *userRepo) EnsureRole(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	role := &domain.Role{Name: name}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(role).Error; err != nil {
		return 0, err
	}
	if role.ID != 0 {
		return role.ID, nil
	}

	var existing domain.Role
	if err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.ID, nil
}

func (r *userRepo) AddRole(ctx context.Context, tx *gorm.DB, userID, roleID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	link := &domain.RoleUser{UserID: userID, RoleID: roleID}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(link).Error
}

func (r *userRepo) RemoveRole(ctx context.Context, tx *gorm.DB, userID int64, roleName string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ? AND role_id IN (?)",
			userID,
			transaction.Model(&domain.Role{}).Select("id").Where("name = ?", roleName),
		).
		Delete(&domain.RoleUser{}).Error
}
