// Package normalize maps domain events onto canonical notifications. The
// mapping rules encode product policy and are exercised end to end by the
// poll pipeline; keep them in sync with the channel defaults below.
package normalize

import (
	"fmt"
	"math"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/events"
	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	"github.com/google/uuid"
)

// Options carry the per-user context a notification is normalized for.
// Normalization itself stays a pure function of event + clock + options; it
// never reads preference state on its own.
type Options struct {
	UserID      uuid.UUID
	Location    string
	EnableSMS   bool
	EnableEmail bool
}

const (
	priceAlertThreshold   = 10.0
	priceHighSwingPercent = 15.0
)

// Weather maps a weather alert. Extreme severity escalates to a critical
// alert; anything below stays a high-priority warning. The alert window's end
// doubles as the notification expiry.
func Weather(ev events.WeatherAlert, now time.Time, opts Options) notifications.Notification {
	category := enums.NotificationCategoryWarning
	priority := enums.PriorityHigh
	if ev.Severity == events.WeatherSeverityExtreme {
		category = enums.NotificationCategoryAlert
		priority = enums.PriorityCritical
	}
	expires := ev.EndTime

	n := base(enums.NotificationTypeWeather, now, opts)
	n.Category = category
	n.Priority = priority
	n.Title = ev.Title
	n.Message = ev.Description
	n.DetailedMessage = fmt.Sprintf("%s expected from %s to %s",
		ev.Event,
		ev.StartTime.Format(time.RFC1123),
		ev.EndTime.Format(time.RFC1123),
	)
	n.ExpiresAt = &expires
	n.ActionRequired = true
	n.ActionText = "View weather details"
	n.Payload = notifications.Payload{Weather: &ev}
	n.Channels = defaultChannels(opts)
	return n
}

// Price maps a market price alert. A swing above 10 percent in either
// direction is an alert; above 15 percent it also escalates to high priority.
func Price(ev events.PriceAlert, now time.Time, opts Options) notifications.Notification {
	change := math.Abs(ev.ChangePercentage)
	category := enums.NotificationCategoryInfo
	if change > priceAlertThreshold {
		category = enums.NotificationCategoryAlert
	}
	priority := enums.PriorityMedium
	if change > priceHighSwingPercent {
		priority = enums.PriorityHigh
	}

	direction := "up"
	if ev.Trend == events.PriceTrendDown {
		direction = "down"
	}

	n := base(enums.NotificationTypePrice, now, opts)
	n.Category = category
	n.Priority = priority
	n.Title = fmt.Sprintf("%s price %s %.1f%%", ev.Commodity, direction, change)
	n.Message = fmt.Sprintf("%s at %s: %s per quintal (was %s)",
		ev.Commodity, ev.Market, ev.Price.StringFixed(2), ev.PreviousPrice.StringFixed(2))
	n.ActionRequired = true
	n.ActionText = "View market prices"
	n.RelatedCrop = ev.Commodity
	n.Payload = notifications.Payload{Price: &ev}
	n.Channels = defaultChannels(opts)
	return n
}

// Seasonal maps an advisory tip. Tips never demand action; only critical
// importance lifts them above medium priority.
func Seasonal(ev events.SeasonalTip, now time.Time, opts Options) notifications.Notification {
	priority := enums.PriorityMedium
	if ev.Importance == events.TipImportanceCritical {
		priority = enums.PriorityHigh
	}

	n := base(enums.NotificationTypeSeasonal, now, opts)
	n.Category = enums.NotificationCategoryTip
	n.Priority = priority
	n.Title = ev.Title
	n.Message = ev.Advice
	n.DetailedMessage = fmt.Sprintf("%s guidance for the %s season", ev.Crop, ev.Season)
	n.ActionRequired = false
	n.RelatedCrop = ev.Crop
	n.Payload = notifications.Payload{Seasonal: &ev}
	n.Channels = defaultChannels(opts)
	return n
}

// Government maps a scheme update. A deadline makes it actionable and
// high-priority, and the notification expires once the deadline passes.
func Government(ev events.GovernmentUpdate, now time.Time, opts Options) notifications.Notification {
	priority := enums.PriorityMedium
	actionRequired := false
	var expires *time.Time
	if ev.Deadline != nil {
		priority = enums.PriorityHigh
		actionRequired = true
		deadline := *ev.Deadline
		expires = &deadline
	}

	n := base(enums.NotificationTypeGovernment, now, opts)
	n.Category = enums.NotificationCategoryUpdate
	n.Priority = priority
	n.Title = ev.Title
	n.Message = ev.Summary
	n.DetailedMessage = fmt.Sprintf("%s, %s", ev.Scheme, ev.Ministry)
	n.ExpiresAt = expires
	n.ActionRequired = actionRequired
	if ev.ReferenceURL != "" {
		n.ActionText = "View scheme"
		n.ActionURL = ev.ReferenceURL
	}
	n.Payload = notifications.Payload{Government: &ev}
	n.Channels = defaultChannels(opts)
	return n
}

func base(t enums.NotificationType, now time.Time, opts Options) notifications.Notification {
	return notifications.Notification{
		ID:        uuid.New(),
		UserID:    opts.UserID,
		Type:      t,
		Timestamp: now,
		Location:  opts.Location,
	}
}

// defaultChannels builds the ordered delivery list. Push and in-app are always
// attempted; SMS and email ride along but stay disabled unless the user opted
// in, so analytics still sees them as configured channels.
func defaultChannels(opts Options) []notifications.ChannelDelivery {
	return []notifications.ChannelDelivery{
		{Channel: enums.ChannelPush, Enabled: true},
		{Channel: enums.ChannelInApp, Enabled: true},
		{Channel: enums.ChannelSMS, Enabled: opts.EnableSMS},
		{Channel: enums.ChannelEmail, Enabled: opts.EnableEmail},
	}
}
