package models

import (
	"time"

	"github.com/google/uuid"
)

// PushSubscription registers one device/browser push endpoint. Rows are only
// ever appended by subscribe calls; the retention job flips IsActive off
// instead of deleting.
type PushSubscription struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null"`
	Endpoint      string    `gorm:"type:text;not null"`
	P256dh        string    `gorm:"type:text;not null"`
	Auth          string    `gorm:"type:text;not null"`
	Device        string    `gorm:"type:text"`
	Browser       string    `gorm:"type:text"`
	SubscribedAt  time.Time `gorm:"not null"`
	IsActive      bool      `gorm:"not null;default:true"`
	DeactivatedAt *time.Time
}

// TableName pins the push subscriptions table name.
func (PushSubscription) TableName() string { return "push_subscriptions" }
