package dispatch

import (
	"context"

	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
)

// InAppChannel is realized by the UI reading the store; delivery is the
// append itself, so the attempt succeeds unconditionally.
type InAppChannel struct{}

// NewInAppChannel builds the in-app channel.
func NewInAppChannel() *InAppChannel { return &InAppChannel{} }

func (c *InAppChannel) Kind() enums.DeliveryChannel { return enums.ChannelInApp }

func (c *InAppChannel) Send(context.Context, *notifications.Notification) error {
	return nil
}
