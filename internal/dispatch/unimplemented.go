package dispatch

import (
	"context"
	"fmt"

	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
)

// UnimplementedChannel stands in for transports this engine does not carry
// yet (SMS, email). Attempts always fail with a recorded error so analytics
// reflects non-delivery instead of a silent success.
type UnimplementedChannel struct {
	kind enums.DeliveryChannel
}

// NewSMSChannel builds the placeholder SMS channel.
func NewSMSChannel() *UnimplementedChannel {
	return &UnimplementedChannel{kind: enums.ChannelSMS}
}

// NewEmailChannel builds the placeholder email channel.
func NewEmailChannel() *UnimplementedChannel {
	return &UnimplementedChannel{kind: enums.ChannelEmail}
}

func (c *UnimplementedChannel) Kind() enums.DeliveryChannel { return c.kind }

func (c *UnimplementedChannel) Send(context.Context, *notifications.Notification) error {
	return fmt.Errorf("%s delivery not implemented", c.kind)
}
