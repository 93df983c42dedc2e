// Package adapters defines the pollable event sources and ships the
// simulator implementations the worker runs against. Real feeds are external
// collaborators; the simulators preserve the event shapes the pipeline
// consumes.
package adapters

import (
	"context"

	"github.com/agritechlabs/agroalert-backend/internal/events"
)

// WeatherSource produces weather alerts.
type WeatherSource interface {
	Poll(ctx context.Context) ([]events.WeatherAlert, error)
}

// PriceSource produces market price alerts.
type PriceSource interface {
	Poll(ctx context.Context) ([]events.PriceAlert, error)
}

// SeasonalSource produces crop-calendar tips.
type SeasonalSource interface {
	Poll(ctx context.Context) ([]events.SeasonalTip, error)
}

// GovernmentSource produces scheme updates.
type GovernmentSource interface {
	Poll(ctx context.Context) ([]events.GovernmentUpdate, error)
}
