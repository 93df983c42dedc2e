package notifications

import (
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/events"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	"github.com/google/uuid"
)

// Payload carries the typed source event behind a notification. Exactly one
// field is set, keyed by the notification type.
type Payload struct {
	Weather    *events.WeatherAlert     `json:"weather,omitempty"`
	Price      *events.PriceAlert       `json:"price,omitempty"`
	Seasonal   *events.SeasonalTip      `json:"seasonal,omitempty"`
	Government *events.GovernmentUpdate `json:"government,omitempty"`
}

// ChannelDelivery is one per-channel delivery attempt embedded in a
// notification. Only Delivered, DeliveredAt and Error ever mutate, and each
// entry mutates independently of its siblings.
type ChannelDelivery struct {
	Channel     enums.DeliveryChannel `json:"channel"`
	Enabled     bool                  `json:"enabled"`
	Delivered   bool                  `json:"delivered"`
	DeliveredAt *time.Time            `json:"deliveredAt,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// Notification is the canonical alert record. Immutable once created except
// for IsRead and the mutable fields inside Channels.
type Notification struct {
	ID              uuid.UUID                  `json:"id"`
	UserID          uuid.UUID                  `json:"userId"`
	Type            enums.NotificationType     `json:"type"`
	Category        enums.NotificationCategory `json:"category"`
	Priority        enums.NotificationPriority `json:"priority"`
	Title           string                     `json:"title"`
	Message         string                     `json:"message"`
	DetailedMessage string                     `json:"detailedMessage,omitempty"`
	Timestamp       time.Time                  `json:"timestamp"`
	ExpiresAt       *time.Time                 `json:"expiresAt,omitempty"`
	IsRead          bool                       `json:"isRead"`
	ActionRequired  bool                       `json:"actionRequired"`
	ActionText      string                     `json:"actionText,omitempty"`
	ActionURL       string                     `json:"actionUrl,omitempty"`
	RelatedCrop     string                     `json:"relatedCrop,omitempty"`
	Location        string                     `json:"location,omitempty"`
	Payload         Payload                    `json:"payload"`
	Channels        []ChannelDelivery          `json:"channels"`
}

// Clone returns a deep copy so callers never hold references into store state.
func (n Notification) Clone() Notification {
	out := n
	if n.ExpiresAt != nil {
		expires := *n.ExpiresAt
		out.ExpiresAt = &expires
	}
	out.Channels = make([]ChannelDelivery, len(n.Channels))
	for i, ch := range n.Channels {
		out.Channels[i] = ch
		if ch.DeliveredAt != nil {
			at := *ch.DeliveredAt
			out.Channels[i].DeliveredAt = &at
		}
	}
	out.Payload = n.Payload.clone()
	return out
}

func (p Payload) clone() Payload {
	out := Payload{}
	if p.Weather != nil {
		w := *p.Weather
		w.Areas = append([]string(nil), p.Weather.Areas...)
		out.Weather = &w
	}
	if p.Price != nil {
		pr := *p.Price
		out.Price = &pr
	}
	if p.Seasonal != nil {
		s := *p.Seasonal
		out.Seasonal = &s
	}
	if p.Government != nil {
		g := *p.Government
		if p.Government.Deadline != nil {
			d := *p.Government.Deadline
			g.Deadline = &d
		}
		out.Government = &g
	}
	return out
}

// Channel returns a pointer to the delivery entry for the given channel, or
// nil when the notification is not configured for it.
func (n *Notification) Channel(kind enums.DeliveryChannel) *ChannelDelivery {
	for i := range n.Channels {
		if n.Channels[i].Channel == kind {
			return &n.Channels[i]
		}
	}
	return nil
}

// Delivered reports whether at least one channel succeeded.
func (n Notification) Delivered() bool {
	for _, ch := range n.Channels {
		if ch.Delivered {
			return true
		}
	}
	return false
}

// Expired reports whether the notification's expiry has passed at the given
// instant. Notifications without an expiry never expire.
func (n Notification) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && n.ExpiresAt.Before(now)
}
