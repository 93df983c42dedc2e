package subscriptions

import (
	"context"
	"time"

	"github.com/agritechlabs/agroalert-backend/pkg/db"
	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"github.com/google/uuid"
)

// Repository exposes persistence helpers for push subscriptions.
type Repository interface {
	Create(ctx context.Context, sub *models.PushSubscription) error
	ActiveForUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error)
	DeactivateOlderThan(ctx context.Context, cutoff, now time.Time) (int64, error)
}

type repositoryImpl struct {
	client *db.Client
}

// NewRepository returns a subscriptions repository bound to the database.
func NewRepository(client *db.Client) Repository {
	return &repositoryImpl{client: client}
}

func (r *repositoryImpl) Create(ctx context.Context, sub *models.PushSubscription) error {
	return r.client.DB().WithContext(ctx).Create(sub).Error
}

func (r *repositoryImpl) ActiveForUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := r.client.DB().WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("subscribed_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repositoryImpl) DeactivateOlderThan(ctx context.Context, cutoff, now time.Time) (int64, error) {
	result := r.client.DB().WithContext(ctx).
		Model(&models.PushSubscription{}).
		Where("is_active = ? AND subscribed_at < ?", true, cutoff).
		Updates(map[string]any{"is_active": false, "deactivated_at": now})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
