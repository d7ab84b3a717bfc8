package domain

// UuidRow is the shared identity table. Every addressable object in the
// store, regardless of kind, owns exactly one row here; the id numbering
// space is global.
type UuidRow struct {
	ID            int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Discriminator string `gorm:"not null;column:discriminator" json:"discriminator"`
	Trashed       bool   `gorm:"not null;default:false;column:trashed" json:"trashed"`
}

func (UuidRow) TableName() string { return "uuid" }
