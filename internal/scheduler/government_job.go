package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/adapters"
	"github.com/agritechlabs/agroalert-backend/internal/normalize"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
)

// GovernmentPollJob polls the scheme update source and feeds the pipeline.
type GovernmentPollJob struct {
	source   adapters.GovernmentSource
	pipeline *Pipeline
	interval time.Duration
}

// NewGovernmentPollJob builds the government update poll job.
func NewGovernmentPollJob(source adapters.GovernmentSource, pipeline *Pipeline, interval time.Duration) *GovernmentPollJob {
	return &GovernmentPollJob{source: source, pipeline: pipeline, interval: interval}
}

func (j *GovernmentPollJob) Name() string            { return "government-poll" }
func (j *GovernmentPollJob) Interval() time.Duration { return j.interval }

func (j *GovernmentPollJob) Run(ctx context.Context) error {
	updates, err := j.source.Poll(ctx)
	if err != nil {
		return fmt.Errorf("poll government source: %w", err)
	}
	if len(updates) == 0 {
		return nil
	}

	recipients, err := j.pipeline.recipients(ctx, enums.NotificationTypeGovernment)
	if err != nil {
		return fmt.Errorf("resolve government recipients: %w", err)
	}

	now := j.pipeline.now().UTC()
	for _, pref := range recipients {
		opts := j.pipeline.options(pref)
		for _, update := range updates {
			j.pipeline.deliver(ctx, normalize.Government(update, now, opts))
		}
	}
	return nil
}
