package domain

import "time"

// PageRepository is a static page outside the entity/revision system but
// with its own small revision chain.
type PageRepository struct {
	ID                int64  `gorm:"primaryKey;column:id" json:"id"`
	Instance          string `gorm:"not null;column:instance" json:"instance"`
	LicenseID         int64  `gorm:"not null;column:license_id" json:"license_id"`
	CurrentRevisionID *int64 `gorm:"column:current_revision_id" json:"current_revision_id"`
}

func (PageRepository) TableName() string { return "page_repository" }

type PageRevision struct {
	ID               int64     `gorm:"primaryKey;column:id" json:"id"`
	AuthorID         int64     `gorm:"not null;column:author_id" json:"author_id"`
	PageRepositoryID int64     `gorm:"not null;index;column:page_repository_id" json:"page_repository_id"`
	Title            string    `gorm:"not null;column:title" json:"title"`
	Content          string    `gorm:"not null;column:content" json:"content"`
	Date             time.Time `gorm:"not null;column:date" json:"date"`
}

func (PageRevision) TableName() string { return "page_revision" }
