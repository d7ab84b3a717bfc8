package domain

import "time"

// User rows reference the shared uuid table through their id.
type User struct {
	ID          int64      `gorm:"primaryKey;column:id" json:"id"`
	Username    string     `gorm:"not null;uniqueIndex;column:username" json:"username"`
	Email       string     `gorm:"not null;column:email" json:"-"`
	Description *string    `gorm:"column:description" json:"description"`
	Date        time.Time  `gorm:"not null;column:date" json:"date"`
	LastLogin   *time.Time `gorm:"column:last_login" json:"last_login"`
}

func (User) TableName() string { return "user" }

type Role struct {
	ID   int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name string `gorm:"not null;uniqueIndex;column:name" json:"name"`
}

func (Role) TableName() string { return "role" }

type RoleUser struct {
	UserID int64 `gorm:"primaryKey;column:user_id" json:"user_id"`
	RoleID int64 `gorm:"primaryKey;column:role_id" json:"role_id"`
}

func (RoleUser) TableName() string { return "role_user" }
