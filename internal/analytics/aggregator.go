// Package analytics derives delivery and engagement statistics from the
// notification store. Nothing here is persisted; every query folds over a
// snapshot of the windowed collection.
package analytics

import (
	"math"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	pkgerrors "github.com/agritechlabs/agroalert-backend/pkg/errors"
	"github.com/google/uuid"
)

// GroupStats is one {sent, delivered, read} triple.
type GroupStats struct {
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Read      int `json:"read"`
}

// Engagement summarizes how delivered notifications convert into reads.
type Engagement struct {
	MostEngagingType enums.NotificationType `json:"mostEngagingType"`
}

// Summary is the derived analytics record for one user and window.
type Summary struct {
	TotalSent      int                                       `json:"totalSent"`
	TotalDelivered int                                       `json:"totalDelivered"`
	TotalRead      int                                       `json:"totalRead"`
	DeliveryRate   float64                                   `json:"deliveryRate"`
	ReadRate       float64                                   `json:"readRate"`
	ByType         map[enums.NotificationType]GroupStats     `json:"byType"`
	ByPriority     map[enums.NotificationPriority]GroupStats `json:"byPriority"`
	Engagement     Engagement                                `json:"engagement"`
}

// SnapshotSource yields a consistent copy of the notification collection.
type SnapshotSource interface {
	Snapshot() []notifications.Notification
}

// Aggregator computes summaries on demand. Read-only; safe to call while the
// store keeps mutating because it never touches live store state.
type Aggregator struct {
	source SnapshotSource
	now    func() time.Time
}

// NewAggregator builds an aggregator over the given snapshot source.
func NewAggregator(source SnapshotSource, now func() time.Time) (*Aggregator, error) {
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "snapshot source required")
	}
	if now == nil {
		now = time.Now
	}
	return &Aggregator{source: source, now: now}, nil
}

// Aggregate folds the user's notifications with timestamp >= now - timeframe.
func (a *Aggregator) Aggregate(userID uuid.UUID, timeframe enums.AnalyticsTimeframe) (*Summary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !timeframe.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid timeframe")
	}

	since := a.now().Add(-timeframe.Duration())
	summary := &Summary{
		ByType:     make(map[enums.NotificationType]GroupStats),
		ByPriority: make(map[enums.NotificationPriority]GroupStats),
	}

	for _, n := range a.source.Snapshot() {
		if n.UserID != userID || n.Timestamp.Before(since) {
			continue
		}
		delivered := n.Delivered()

		summary.TotalSent++
		if delivered {
			summary.TotalDelivered++
		}
		if n.IsRead {
			summary.TotalRead++
		}

		byType := summary.ByType[n.Type]
		byType.Sent++
		if delivered {
			byType.Delivered++
		}
		if n.IsRead {
			byType.Read++
		}
		summary.ByType[n.Type] = byType

		byPriority := summary.ByPriority[n.Priority]
		byPriority.Sent++
		if delivered {
			byPriority.Delivered++
		}
		if n.IsRead {
			byPriority.Read++
		}
		summary.ByPriority[n.Priority] = byPriority
	}

	if summary.TotalSent > 0 {
		summary.DeliveryRate = round2(float64(summary.TotalDelivered) / float64(summary.TotalSent) * 100)
	}
	if summary.TotalDelivered > 0 {
		summary.ReadRate = round2(float64(summary.TotalRead) / float64(summary.TotalDelivered) * 100)
	}
	summary.Engagement.MostEngagingType = mostEngagingType(summary.ByType)

	return summary, nil
}

// mostEngagingType picks the type with the highest read count among the types
// present, breaking ties by enumeration order. An empty window falls back to
// the general type.
func mostEngagingType(byType map[enums.NotificationType]GroupStats) enums.NotificationType {
	best := enums.NotificationTypeGeneral
	bestReads := -1
	for _, t := range enums.NotificationTypes() {
		stats, ok := byType[t]
		if !ok {
			continue
		}
		if stats.Read > bestReads {
			best = t
			bestReads = stats.Read
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
