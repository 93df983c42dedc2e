package enums

import "fmt"

// DeliveryChannel names a transport through which a notification may reach a user.
type DeliveryChannel string

const (
	ChannelPush  DeliveryChannel = "push"
	ChannelSMS   DeliveryChannel = "sms"
	ChannelEmail DeliveryChannel = "email"
	ChannelInApp DeliveryChannel = "in_app"
)

var validDeliveryChannels = []DeliveryChannel{
	ChannelPush,
	ChannelSMS,
	ChannelEmail,
	ChannelInApp,
}

// DeliveryChannels returns the canonical enumeration order.
func DeliveryChannels() []DeliveryChannel {
	channels := make([]DeliveryChannel, len(validDeliveryChannels))
	copy(channels, validDeliveryChannels)
	return channels
}

// IsValid reports whether the value matches the canonical channel enum.
func (d DeliveryChannel) IsValid() bool {
	for _, candidate := range validDeliveryChannels {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryChannel converts the raw string to DeliveryChannel.
func ParseDeliveryChannel(value string) (DeliveryChannel, error) {
	for _, candidate := range validDeliveryChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery channel %q", value)
}
