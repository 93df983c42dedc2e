// Package dispatch attempts delivery of a notification on every enabled
// channel. Channels are independent: one channel's failure or unavailability
// never touches another's outcome.
package dispatch

import (
	"context"
	"errors"

	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
)

// ErrChannelUnavailable marks an attempt that is neither a success nor a
// recorded failure: the channel simply could not fire (push permission not
// granted, quiet hours, no registered endpoint). The delivery entry stays
// untouched.
var ErrChannelUnavailable = errors.New("channel unavailable")

// Channel is one delivery transport.
type Channel interface {
	Kind() enums.DeliveryChannel
	Send(ctx context.Context, n *notifications.Notification) error
}
