package notifications

import (
	"context"

	"github.com/agritechlabs/agroalert-backend/pkg/db"
	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"gorm.io/gorm"
)

// SnapshotRepository persists and restores the durable notification snapshot.
type SnapshotRepository interface {
	Replace(ctx context.Context, rows []models.NotificationSnapshot) error
	Load(ctx context.Context) ([]models.NotificationSnapshot, error)
}

type snapshotRepo struct {
	client *db.Client
}

// NewSnapshotRepository returns a snapshot repository bound to the database.
func NewSnapshotRepository(client *db.Client) SnapshotRepository {
	return &snapshotRepo{client: client}
}

// Replace swaps the whole snapshot in one transaction. The snapshot always
// mirrors the latest in-memory state, so previous rows are dropped, not merged.
func (r *snapshotRepo) Replace(ctx context.Context, rows []models.NotificationSnapshot) error {
	return r.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&models.NotificationSnapshot{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *snapshotRepo) Load(ctx context.Context) ([]models.NotificationSnapshot, error) {
	var rows []models.NotificationSnapshot
	if err := r.client.DB().WithContext(ctx).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
