package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	"github.com/google/uuid"
)

// PermissionStore answers whether a user has granted push permission.
type PermissionStore interface {
	Granted(ctx context.Context, userID uuid.UUID) (bool, error)
}

// SubscriptionSource lists a user's active push endpoints.
type SubscriptionSource interface {
	ActiveForUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error)
}

// QuietHoursSource reports whether the user is inside a configured quiet
// window at the given instant.
type QuietHoursSource interface {
	InQuietHours(ctx context.Context, userID uuid.UUID, at time.Time) (bool, error)
}

// PushPayload is what the sender hands to the platform push endpoint.
type PushPayload struct {
	Title              string `json:"title"`
	Body               string `json:"body"`
	NotificationID     string `json:"notificationId"`
	Priority           string `json:"priority"`
	RequireInteraction bool   `json:"requireInteraction"`
	ActionURL          string `json:"actionUrl,omitempty"`
}

// Sender posts a payload to one push subscription endpoint.
type Sender interface {
	Send(ctx context.Context, sub models.PushSubscription, payload PushPayload) error
}

// PushChannel delivers through web push. An attempt only counts once the
// permission gate, the quiet window and endpoint availability all pass;
// anything short of that is a silent no-op per product policy.
type PushChannel struct {
	permissions PermissionStore
	subs        SubscriptionSource
	quiet       QuietHoursSource
	sender      Sender
	now         func() time.Time
}

// PushChannelParams configure a PushChannel.
type PushChannelParams struct {
	Permissions PermissionStore
	Subs        SubscriptionSource
	Quiet       QuietHoursSource
	Sender      Sender
	Now         func() time.Time
}

// NewPushChannel wires the push delivery channel.
func NewPushChannel(params PushChannelParams) (*PushChannel, error) {
	if params.Permissions == nil {
		return nil, fmt.Errorf("permission store required")
	}
	if params.Subs == nil {
		return nil, fmt.Errorf("subscription source required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("push sender required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &PushChannel{
		permissions: params.Permissions,
		subs:        params.Subs,
		quiet:       params.Quiet,
		sender:      params.Sender,
		now:         now,
	}, nil
}

func (c *PushChannel) Kind() enums.DeliveryChannel { return enums.ChannelPush }

func (c *PushChannel) Send(ctx context.Context, n *notifications.Notification) error {
	granted, err := c.permissions.Granted(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("read push permission: %w", err)
	}
	if !granted {
		return ErrChannelUnavailable
	}

	if c.quiet != nil {
		inQuiet, err := c.quiet.InQuietHours(ctx, n.UserID, c.now())
		if err != nil {
			return fmt.Errorf("read quiet hours: %w", err)
		}
		if inQuiet {
			return ErrChannelUnavailable
		}
	}

	subs, err := c.subs.ActiveForUser(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("list push subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return ErrChannelUnavailable
	}

	payload := PushPayload{
		Title:              n.Title,
		Body:               n.Message,
		NotificationID:     n.ID.String(),
		Priority:           string(n.Priority),
		RequireInteraction: n.Priority == enums.PriorityCritical,
		ActionURL:          n.ActionURL,
	}

	delivered := 0
	var lastErr error
	for _, sub := range subs {
		if err := c.sender.Send(ctx, sub, payload); err != nil {
			lastErr = err
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("push send failed for all %d endpoints: %w", len(subs), lastErr)
	}
	return nil
}
