package domain

import "time"

// Entity is a versioned repository object (article, course, exercise, ...).
// Its id references the shared uuid table.
type Entity struct {
	ID                int64     `gorm:"primaryKey;column:id" json:"id"`
	Type              string    `gorm:"not null;column:type" json:"type"`
	Instance          string    `gorm:"not null;column:instance" json:"instance"`
	LicenseID         int64     `gorm:"not null;column:license_id" json:"license_id"`
	CurrentRevisionID *int64    `gorm:"column:current_revision_id" json:"current_revision_id"`
	Date              time.Time `gorm:"not null;column:date" json:"date"`
}

func (Entity) TableName() string { return "entity" }

// EntityRevision is one immutable content snapshot of an entity. Rows are
// append-only; repository_id points at the owning entity.
type EntityRevision struct {
	ID           int64     `gorm:"primaryKey;column:id" json:"id"`
	AuthorID     int64     `gorm:"not null;column:author_id" json:"author_id"`
	RepositoryID int64     `gorm:"not null;index;column:repository_id" json:"repository_id"`
	Date         time.Time `gorm:"not null;column:date" json:"date"`
}

func (EntityRevision) TableName() string { return "entity_revision" }

// EntityRevisionField is one key/value pair of a revision's free-form field
// map. The legacy store keeps revision content as rows, not columns.
type EntityRevisionField struct {
	ID               int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	EntityRevisionID int64  `gorm:"not null;index;column:entity_revision_id" json:"entity_revision_id"`
	Field            string `gorm:"not null;column:field" json:"field"`
	Value            string `gorm:"not null;column:value" json:"value"`
}

func (EntityRevisionField) TableName() string { return "entity_revision_field" }

// EntityLink attaches a child entity below a parent entity (course pages
// below a course, grouped exercises below a group, solutions below an
// exercise). Position orders siblings.
type EntityLink struct {
	ID       int64 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	ParentID int64 `gorm:"not null;index;column:parent_id" json:"parent_id"`
	ChildID  int64 `gorm:"not null;index;column:child_id" json:"child_id"`
	Position int   `gorm:"not null;default:0;column:position" json:"position"`
}

func (EntityLink) TableName() string { return "entity_link" }
