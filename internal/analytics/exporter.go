package analytics

import (
	"context"
	"time"

	bq "cloud.google.com/go/bigquery"
	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/pkg/bigquery"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
)

const exportTimeout = 15 * time.Second

// DeliveryFact is one streamed row per channel attempt.
type DeliveryFact struct {
	NotificationID string    `bigquery:"notification_id"`
	UserID         string    `bigquery:"user_id"`
	Type           string    `bigquery:"type"`
	Category       string    `bigquery:"category"`
	Priority       string    `bigquery:"priority"`
	Channel        string    `bigquery:"channel"`
	Enabled        bool      `bigquery:"enabled"`
	Delivered      bool      `bigquery:"delivered"`
	DeliveryError  string    `bigquery:"delivery_error"`
	CreatedAt      time.Time `bigquery:"created_at"`
	ExportedAt     time.Time `bigquery:"exported_at"`
}

// factInserter is the slice of the BigQuery inserter the exporter needs.
type factInserter interface {
	Put(ctx context.Context, src any) error
}

// BigQueryExporter streams per-channel delivery outcomes to the warehouse.
// Export is fire-and-forget from the dispatch path; failures only get logged.
type BigQueryExporter struct {
	inserter factInserter
	logg     *logger.Logger
	now      func() time.Time
}

// NewBigQueryExporter builds the exporter. Returns nil when the client is not
// configured; callers treat a nil exporter as disabled.
func NewBigQueryExporter(client *bigquery.Client, logg *logger.Logger) *BigQueryExporter {
	if client == nil {
		return nil
	}
	inserter := client.DeliveryFactsInserter()
	if inserter == nil {
		return nil
	}
	return newExporter(inserter, logg)
}

func newExporter(inserter factInserter, logg *logger.Logger) *BigQueryExporter {
	return &BigQueryExporter{inserter: inserter, logg: logg, now: time.Now}
}

// ExportDeliveries streams one fact per configured channel.
func (e *BigQueryExporter) ExportDeliveries(_ context.Context, n notifications.Notification) {
	if e == nil {
		return
	}
	exportedAt := e.now().UTC()
	facts := make([]DeliveryFact, 0, len(n.Channels))
	for _, ch := range n.Channels {
		facts = append(facts, DeliveryFact{
			NotificationID: n.ID.String(),
			UserID:         n.UserID.String(),
			Type:           string(n.Type),
			Category:       string(n.Category),
			Priority:       string(n.Priority),
			Channel:        string(ch.Channel),
			Enabled:        ch.Enabled,
			Delivered:      ch.Delivered,
			DeliveryError:  ch.Error,
			CreatedAt:      n.Timestamp,
			ExportedAt:     exportedAt,
		})
	}

	go func() {
		putCtx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()
		if err := e.inserter.Put(putCtx, facts); err != nil {
			if e.logg != nil {
				e.logg.Error(putCtx, "delivery fact export failed", err)
			}
		}
	}()
}

var _ factInserter = (*bq.Inserter)(nil)
