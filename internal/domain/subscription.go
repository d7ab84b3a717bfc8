package domain

import "time"

// Subscription subscribes a user to mutations of one object. Unique per
// (uuid_id, user_id); saving an existing pair updates send_email in place.
type Subscription struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UuidID    int64     `gorm:"not null;uniqueIndex:idx_subscription_object_user;column:uuid_id" json:"uuid_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_subscription_object_user;column:user_id" json:"user_id"`
	SendEmail bool      `gorm:"not null;default:false;column:send_email" json:"send_email"`
	Date      time.Time `gorm:"not null;column:date" json:"date"`
}

func (Subscription) TableName() string { return "subscription" }
