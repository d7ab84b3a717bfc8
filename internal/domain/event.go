package domain

import "time"

// EventLog is the append-only record of every mutation. Rows are never
// updated or deleted; pagination orders by (date desc, id desc).
type EventLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	ActorID   int64     `gorm:"not null;index;column:actor_id" json:"actor_id"`
	EventType string    `gorm:"not null;column:event_type" json:"event_type"`
	UuidID    int64     `gorm:"not null;index;column:uuid_id" json:"uuid_id"`
	Instance  string    `gorm:"not null;column:instance" json:"instance"`
	Date      time.Time `gorm:"not null;index;column:date" json:"date"`
}

func (EventLog) TableName() string { return "event_log" }

// EventParameter is one named parameter of an event. Exactly one of
// StringValue and UuidValue is meaningful, selected by the event type's
// parameter contract.
type EventParameter struct {
	ID          int64   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	EventLogID  int64   `gorm:"not null;index;column:event_log_id" json:"event_log_id"`
	Name        string  `gorm:"not null;column:name" json:"name"`
	StringValue *string `gorm:"column:string_value" json:"string_value"`
	UuidValue   *int64  `gorm:"column:uuid_value" json:"uuid_value"`
}

func (EventParameter) TableName() string { return "event_parameter" }

// Notification is the per-subscriber materialization of one event.
type Notification struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID     int64     `gorm:"not null;index;column:user_id" json:"user_id"`
	EventLogID int64     `gorm:"not null;index;column:event_log_id" json:"event_log_id"`
	Seen       bool      `gorm:"not null;default:false;column:seen" json:"seen"`
	Email      bool      `gorm:"not null;default:false;column:email" json:"email"`
	Date       time.Time `gorm:"not null;column:date" json:"date"`
}

func (Notification) TableName() string { return "notification" }
