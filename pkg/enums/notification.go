package enums

import "fmt"

// NotificationType identifies the domain a notification originated from.
type NotificationType string

const (
	NotificationTypeWeather    NotificationType = "weather"
	NotificationTypePrice      NotificationType = "price"
	NotificationTypeSeasonal   NotificationType = "seasonal"
	NotificationTypeGovernment NotificationType = "government"
	NotificationTypeDisease    NotificationType = "disease"
	NotificationTypeIrrigation NotificationType = "irrigation"
	NotificationTypeGeneral    NotificationType = "general"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeWeather,
	NotificationTypePrice,
	NotificationTypeSeasonal,
	NotificationTypeGovernment,
	NotificationTypeDisease,
	NotificationTypeIrrigation,
	NotificationTypeGeneral,
}

// NotificationTypes returns the canonical enumeration order.
func NotificationTypes() []NotificationType {
	types := make([]NotificationType, len(validNotificationTypes))
	copy(types, validNotificationTypes)
	return types
}

// IsValid reports whether the value matches the canonical notification type enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts the raw string to NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// NotificationCategory drives UI tone; orthogonal to type, never used for routing.
type NotificationCategory string

const (
	NotificationCategoryAlert   NotificationCategory = "alert"
	NotificationCategoryWarning NotificationCategory = "warning"
	NotificationCategoryInfo    NotificationCategory = "info"
	NotificationCategoryTip     NotificationCategory = "tip"
	NotificationCategoryUpdate  NotificationCategory = "update"
)

var validNotificationCategories = []NotificationCategory{
	NotificationCategoryAlert,
	NotificationCategoryWarning,
	NotificationCategoryInfo,
	NotificationCategoryTip,
	NotificationCategoryUpdate,
}

// IsValid reports whether the value matches the canonical category enum.
func (n NotificationCategory) IsValid() bool {
	for _, candidate := range validNotificationCategories {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationCategory converts the raw string to NotificationCategory.
func ParseNotificationCategory(value string) (NotificationCategory, error) {
	for _, candidate := range validNotificationCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification category %q", value)
}
