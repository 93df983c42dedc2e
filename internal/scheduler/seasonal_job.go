package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/adapters"
	"github.com/agritechlabs/agroalert-backend/internal/normalize"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
)

// SeasonalPollJob polls the agronomy tip source and feeds the pipeline.
type SeasonalPollJob struct {
	source   adapters.SeasonalSource
	pipeline *Pipeline
	interval time.Duration
}

// NewSeasonalPollJob builds the seasonal tip poll job.
func NewSeasonalPollJob(source adapters.SeasonalSource, pipeline *Pipeline, interval time.Duration) *SeasonalPollJob {
	return &SeasonalPollJob{source: source, pipeline: pipeline, interval: interval}
}

func (j *SeasonalPollJob) Name() string            { return "seasonal-poll" }
func (j *SeasonalPollJob) Interval() time.Duration { return j.interval }

func (j *SeasonalPollJob) Run(ctx context.Context) error {
	tips, err := j.source.Poll(ctx)
	if err != nil {
		return fmt.Errorf("poll seasonal source: %w", err)
	}
	if len(tips) == 0 {
		return nil
	}

	recipients, err := j.pipeline.recipients(ctx, enums.NotificationTypeSeasonal)
	if err != nil {
		return fmt.Errorf("resolve seasonal recipients: %w", err)
	}

	now := j.pipeline.now().UTC()
	for _, pref := range recipients {
		opts := j.pipeline.options(pref)
		for _, tip := range tips {
			j.pipeline.deliver(ctx, normalize.Seasonal(tip, now, opts))
		}
	}
	return nil
}
