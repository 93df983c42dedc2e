package subscriptions

import (
	"context"
	"time"

	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	pkgerrors "github.com/agritechlabs/agroalert-backend/pkg/errors"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/google/uuid"
)

// Service owns push subscription registrations. Subscriptions are append-only;
// stale rows get deactivated by the retention job, never deleted.
type Service interface {
	Subscribe(ctx context.Context, params SubscribeParams) (*models.PushSubscription, error)
	ActiveForUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error)
	DeactivateStale(ctx context.Context, maxAge time.Duration) (int64, error)
}

// SubscribeParams register one device/browser pairing.
type SubscribeParams struct {
	UserID   uuid.UUID
	Endpoint string
	P256dh   string
	Auth     string
	Device   string
	Browser  string
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// ServiceParams configure the subscriptions service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
	Now    func() time.Time
}

// NewService wires subscriptions dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, logg: params.Logger, now: now}, nil
}

func (s *service) Subscribe(ctx context.Context, params SubscribeParams) (*models.PushSubscription, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if params.Endpoint == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "endpoint required")
	}
	if params.P256dh == "" || params.Auth == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription keys required")
	}

	sub := &models.PushSubscription{
		ID:           uuid.New(),
		UserID:       params.UserID,
		Endpoint:     params.Endpoint,
		P256dh:       params.P256dh,
		Auth:         params.Auth,
		Device:       params.Device,
		Browser:      params.Browser,
		SubscribedAt: s.now().UTC(),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register push subscription")
	}
	return sub, nil
}

func (s *service) ActiveForUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error) {
	subs, err := s.repo.ActiveForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list push subscriptions")
	}
	return subs, nil
}

func (s *service) DeactivateStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "max age must be positive")
	}
	now := s.now().UTC()
	count, err := s.repo.DeactivateOlderThan(ctx, now.Add(-maxAge), now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate stale subscriptions")
	}
	return count, nil
}
