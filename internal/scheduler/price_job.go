package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/adapters"
	"github.com/agritechlabs/agroalert-backend/internal/events"
	"github.com/agritechlabs/agroalert-backend/internal/normalize"
	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
)

// PricePollJob polls the market source and feeds the pipeline. Users with a
// configured band for a commodity only hear about prices outside that band;
// users without a band get every alert.
type PricePollJob struct {
	source   adapters.PriceSource
	pipeline *Pipeline
	interval time.Duration
}

// NewPricePollJob builds the price poll job.
func NewPricePollJob(source adapters.PriceSource, pipeline *Pipeline, interval time.Duration) *PricePollJob {
	return &PricePollJob{source: source, pipeline: pipeline, interval: interval}
}

func (j *PricePollJob) Name() string            { return "price-poll" }
func (j *PricePollJob) Interval() time.Duration { return j.interval }

func (j *PricePollJob) Run(ctx context.Context) error {
	alerts, err := j.source.Poll(ctx)
	if err != nil {
		return fmt.Errorf("poll price source: %w", err)
	}
	if len(alerts) == 0 {
		return nil
	}

	recipients, err := j.pipeline.recipients(ctx, enums.NotificationTypePrice)
	if err != nil {
		return fmt.Errorf("resolve price recipients: %w", err)
	}

	now := j.pipeline.now().UTC()
	for _, pref := range recipients {
		opts := j.pipeline.options(pref)
		for _, alert := range alerts {
			if !priceRelevant(pref, alert) {
				continue
			}
			j.pipeline.deliver(ctx, normalize.Price(alert, now, opts))
		}
	}
	return nil
}

func priceRelevant(pref models.Preference, alert events.PriceAlert) bool {
	band, ok := pref.PriceThresholds[alert.Commodity]
	if !ok {
		return true
	}
	return alert.Price.LessThan(band.Min) || alert.Price.GreaterThan(band.Max)
}
