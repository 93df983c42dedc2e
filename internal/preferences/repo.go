package preferences

import (
	"context"
	"errors"

	"github.com/agritechlabs/agroalert-backend/pkg/db"
	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence helpers for preference records.
type Repository interface {
	Upsert(ctx context.Context, pref *models.Preference) error
	Get(ctx context.Context, userID uuid.UUID) (*models.Preference, error)
	List(ctx context.Context) ([]models.Preference, error)
}

type repositoryImpl struct {
	client *db.Client
}

// NewRepository returns a preferences repository bound to the database.
func NewRepository(client *db.Client) Repository {
	return &repositoryImpl{client: client}
}

func (r *repositoryImpl) Upsert(ctx context.Context, pref *models.Preference) error {
	return r.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(pref).Error
}

func (r *repositoryImpl) Get(ctx context.Context, userID uuid.UUID) (*models.Preference, error) {
	var pref models.Preference
	err := r.client.DB().WithContext(ctx).First(&pref, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pref, nil
}

func (r *repositoryImpl) List(ctx context.Context) ([]models.Preference, error) {
	var prefs []models.Preference
	if err := r.client.DB().WithContext(ctx).Find(&prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}
