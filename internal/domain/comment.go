package domain

import "time"

// Comment is both a discussion thread (ParentID nil, UuidID set to the
// discussed object) and a reply (ParentID set to the thread root).
type Comment struct {
	ID       int64     `gorm:"primaryKey;column:id" json:"id"`
	AuthorID int64     `gorm:"not null;index;column:author_id" json:"author_id"`
	UuidID   *int64    `gorm:"index;column:uuid_id" json:"uuid_id"`
	ParentID *int64    `gorm:"index;column:parent_id" json:"parent_id"`
	Title    *string   `gorm:"column:title" json:"title"`
	Content  string    `gorm:"not null;column:content" json:"content"`
	Archived bool      `gorm:"not null;default:false;column:archived" json:"archived"`
	Date     time.Time `gorm:"not null;column:date" json:"date"`
}

func (Comment) TableName() string { return "comment" }
