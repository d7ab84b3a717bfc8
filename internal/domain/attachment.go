package domain

import "time"

// Attachment is an uploaded file container kept around from the legacy
// upload system.
type Attachment struct {
	ID       int64  `gorm:"primaryKey;column:id" json:"id"`
	Filename string `gorm:"not null;column:filename" json:"filename"`
}

func (Attachment) TableName() string { return "attachment" }

// BlogPost is a legacy blog article; blogs predate the entity system and
// keep their own flat table.
type BlogPost struct {
	ID       int64     `gorm:"primaryKey;column:id" json:"id"`
	AuthorID int64     `gorm:"not null;column:author_id" json:"author_id"`
	Title    string    `gorm:"not null;column:title" json:"title"`
	Content  string    `gorm:"not null;column:content" json:"content"`
	Date     time.Time `gorm:"not null;column:date" json:"date"`
}

func (BlogPost) TableName() string { return "blog_post" }
