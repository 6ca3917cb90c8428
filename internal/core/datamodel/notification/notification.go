package notification

import "time"

// Notification maps the notifications table for both gorm migrations in tests and sqlx queries.
type Notification struct {
	ID        string    `gorm:"primaryKey;column:id" db:"id"`
	Recipient string    `gorm:"column:recipient;not null;index" db:"recipient"`
	Subject   string    `gorm:"column:subject;not null" db:"subject"`
	Message   string    `gorm:"column:message;not null" db:"message"`
	Read      bool      `gorm:"column:is_read;not null;default:false" db:"is_read"`
	CreatedAt time.Time `gorm:"column:created_at" db:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
