package enums

import (
	"fmt"
	"time"
)

// AnalyticsTimeframe bounds the rolling window an analytics query covers.
type AnalyticsTimeframe string

const (
	TimeframeDay   AnalyticsTimeframe = "day"
	TimeframeWeek  AnalyticsTimeframe = "week"
	TimeframeMonth AnalyticsTimeframe = "month"
)

var validTimeframes = []AnalyticsTimeframe{
	TimeframeDay,
	TimeframeWeek,
	TimeframeMonth,
}

// Duration converts the timeframe into its rolling-window length.
func (a AnalyticsTimeframe) Duration() time.Duration {
	switch a {
	case TimeframeDay:
		return 24 * time.Hour
	case TimeframeWeek:
		return 7 * 24 * time.Hour
	case TimeframeMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// IsValid reports whether the value matches the canonical timeframe enum.
func (a AnalyticsTimeframe) IsValid() bool {
	for _, candidate := range validTimeframes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAnalyticsTimeframe converts the raw string to AnalyticsTimeframe.
func ParseAnalyticsTimeframe(value string) (AnalyticsTimeframe, error) {
	for _, candidate := range validTimeframes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid analytics timeframe %q", value)
}
