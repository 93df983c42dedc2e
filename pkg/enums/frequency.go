package enums

import "fmt"

// AlertFrequency is the user's preferred delivery cadence.
type AlertFrequency string

const (
	FrequencyImmediate AlertFrequency = "immediate"
	FrequencyHourly    AlertFrequency = "hourly"
	FrequencyDaily     AlertFrequency = "daily"
	FrequencyWeekly    AlertFrequency = "weekly"
)

var validAlertFrequencies = []AlertFrequency{
	FrequencyImmediate,
	FrequencyHourly,
	FrequencyDaily,
	FrequencyWeekly,
}

// IsValid reports whether the value matches the canonical frequency enum.
func (a AlertFrequency) IsValid() bool {
	for _, candidate := range validAlertFrequencies {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAlertFrequency converts the raw string to AlertFrequency.
func ParseAlertFrequency(value string) (AlertFrequency, error) {
	for _, candidate := range validAlertFrequencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert frequency %q", value)
}
