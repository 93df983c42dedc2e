package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/subscriptions"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
)

// RetentionJob deactivates push subscriptions that have gone stale. Rows are
// flipped inactive, never deleted.
type RetentionJob struct {
	subs     subscriptions.Service
	logg     *logger.Logger
	maxAge   time.Duration
	interval time.Duration
}

// NewRetentionJob builds the subscription retention job.
func NewRetentionJob(subs subscriptions.Service, logg *logger.Logger, maxAge, interval time.Duration) *RetentionJob {
	return &RetentionJob{subs: subs, logg: logg, maxAge: maxAge, interval: interval}
}

func (j *RetentionJob) Name() string            { return "subscription-retention" }
func (j *RetentionJob) Interval() time.Duration { return j.interval }

func (j *RetentionJob) Run(ctx context.Context) error {
	deactivated, err := j.subs.DeactivateStale(ctx, j.maxAge)
	if err != nil {
		return fmt.Errorf("deactivate stale subscriptions: %w", err)
	}
	if deactivated > 0 {
		j.logg.Info(j.logg.WithField(ctx, "deactivated", deactivated), "deactivated stale push subscriptions")
	}
	return nil
}
