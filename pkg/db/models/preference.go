package models

import (
	"time"

	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceBand is the commodity price window a user wants to stay inside of.
type PriceBand struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Preference stores per-user notification preferences, overwritten wholesale
// on every update.
type Preference struct {
	UserID          uuid.UUID            `gorm:"type:uuid;primaryKey"`
	Toggles         map[string]bool      `gorm:"serializer:json;type:text;not null"`
	Location        string               `gorm:"type:text"`
	Crops           []string             `gorm:"serializer:json;type:text"`
	PriceThresholds map[string]PriceBand `gorm:"serializer:json;type:text"`
	AlertFrequency  enums.AlertFrequency `gorm:"type:text;not null"`
	QuietEnabled    bool                 `gorm:"not null"`
	QuietStart      string               `gorm:"type:text"`
	QuietEnd        string               `gorm:"type:text"`
	SchemaVersion   int                  `gorm:"not null"`
	UpdatedAt       time.Time
}

// TableName pins the preferences table name.
func (Preference) TableName() string { return "preferences" }

// Clone deep-copies the record so callers can mutate the result without
// touching the original's maps and slices.
func (p Preference) Clone() Preference {
	out := p
	if p.Toggles != nil {
		out.Toggles = make(map[string]bool, len(p.Toggles))
		for k, v := range p.Toggles {
			out.Toggles[k] = v
		}
	}
	if p.Crops != nil {
		out.Crops = append([]string(nil), p.Crops...)
	}
	if p.PriceThresholds != nil {
		out.PriceThresholds = make(map[string]PriceBand, len(p.PriceThresholds))
		for k, v := range p.PriceThresholds {
			out.PriceThresholds[k] = v
		}
	}
	return out
}

// ChannelOptIn reports whether the user explicitly enabled an optional
// delivery channel. Unlike type toggles, channel opt-ins default to off.
func (p Preference) ChannelOptIn(ch enums.DeliveryChannel) bool {
	if p.Toggles == nil {
		return false
	}
	return p.Toggles["channel_"+string(ch)]
}

// TypeEnabled reports whether the user wants notifications of the given type.
// A missing toggle defaults to enabled.
func (p Preference) TypeEnabled(t enums.NotificationType) bool {
	if p.Toggles == nil {
		return true
	}
	enabled, ok := p.Toggles[string(t)]
	if !ok {
		return true
	}
	return enabled
}
