package models

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotSchemaVersion tags persisted rows so future layout changes can be
// migrated instead of silently misread.
const SnapshotSchemaVersion = 1

// NotificationSnapshot is one row of the durable notification snapshot. The
// in-memory store is authoritative; rows hold the canonical JSON body plus the
// columns needed to restore ordering and user scope on boot.
type NotificationSnapshot struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null"`
	Position      int       `gorm:"not null"`
	SchemaVersion int       `gorm:"not null"`
	Body          string    `gorm:"type:text;not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName pins the snapshot table name.
func (NotificationSnapshot) TableName() string { return "notification_snapshots" }
