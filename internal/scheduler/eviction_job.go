package scheduler

import (
	"context"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
)

// EvictionJob periodically removes expired notifications from the store.
// Expiry is only ever enforced here, never on reads.
type EvictionJob struct {
	store    *notifications.Store
	logg     *logger.Logger
	interval time.Duration
}

// NewEvictionJob builds the store eviction job.
func NewEvictionJob(store *notifications.Store, logg *logger.Logger, interval time.Duration) *EvictionJob {
	return &EvictionJob{store: store, logg: logg, interval: interval}
}

func (j *EvictionJob) Name() string            { return "notification-eviction" }
func (j *EvictionJob) Interval() time.Duration { return j.interval }

func (j *EvictionJob) Run(ctx context.Context) error {
	evicted := j.store.EvictExpired()
	if evicted > 0 {
		j.logg.Info(j.logg.WithField(ctx, "evicted", evicted), "evicted expired notifications")
	}
	return nil
}
