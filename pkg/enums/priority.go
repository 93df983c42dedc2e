package enums

import "fmt"

// NotificationPriority orders urgency: low < medium < high < critical.
type NotificationPriority string

const (
	PriorityLow      NotificationPriority = "low"
	PriorityMedium   NotificationPriority = "medium"
	PriorityHigh     NotificationPriority = "high"
	PriorityCritical NotificationPriority = "critical"
)

var validPriorities = []NotificationPriority{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityCritical,
}

// NotificationPriorities returns the canonical enumeration order, lowest first.
func NotificationPriorities() []NotificationPriority {
	priorities := make([]NotificationPriority, len(validPriorities))
	copy(priorities, validPriorities)
	return priorities
}

// Rank returns the monotonic ordering position; unknown values rank below low.
func (p NotificationPriority) Rank() int {
	for i, candidate := range validPriorities {
		if candidate == p {
			return i
		}
	}
	return -1
}

// IsValid reports whether the value matches the canonical priority enum.
func (p NotificationPriority) IsValid() bool {
	return p.Rank() >= 0
}

// ParseNotificationPriority converts the raw string to NotificationPriority.
func ParseNotificationPriority(value string) (NotificationPriority, error) {
	for _, candidate := range validPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification priority %q", value)
}
