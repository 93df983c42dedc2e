package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeatherSeverity grades how disruptive a weather event is expected to be.
type WeatherSeverity string

const (
	WeatherSeverityLow     WeatherSeverity = "low"
	WeatherSeverityMedium  WeatherSeverity = "medium"
	WeatherSeverityHigh    WeatherSeverity = "high"
	WeatherSeverityExtreme WeatherSeverity = "extreme"
)

// TipImportance grades how urgent a seasonal recommendation is.
type TipImportance string

const (
	TipImportanceLow      TipImportance = "low"
	TipImportanceMedium   TipImportance = "medium"
	TipImportanceHigh     TipImportance = "high"
	TipImportanceCritical TipImportance = "critical"
)

// PriceTrend describes the direction a commodity price is moving.
type PriceTrend string

const (
	PriceTrendUp     PriceTrend = "up"
	PriceTrendDown   PriceTrend = "down"
	PriceTrendStable PriceTrend = "stable"
)

// WeatherAlert is emitted by the weather source when conditions threaten crops.
type WeatherAlert struct {
	Event       string          `json:"event"`
	Severity    WeatherSeverity `json:"severity"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	StartTime   time.Time       `json:"startTime"`
	EndTime     time.Time       `json:"endTime"`
	Areas       []string        `json:"areas"`
}

// PriceAlert is emitted by the market source when a commodity price moves
// beyond a user threshold or swings sharply.
type PriceAlert struct {
	Commodity        string          `json:"commodity"`
	Market           string          `json:"market"`
	Price            decimal.Decimal `json:"price"`
	PreviousPrice    decimal.Decimal `json:"previousPrice"`
	ChangePercentage float64         `json:"changePercentage"`
	Trend            PriceTrend      `json:"trend"`
}

// SeasonalTip is emitted by the advisory source at crop-calendar milestones.
type SeasonalTip struct {
	Crop       string        `json:"crop"`
	Season     string        `json:"season"`
	Importance TipImportance `json:"importance"`
	Title      string        `json:"title"`
	Advice     string        `json:"advice"`
	ValidFrom  time.Time     `json:"validFrom"`
	ValidUntil time.Time     `json:"validUntil"`
}

// GovernmentUpdate is emitted by the schemes source when a ministry publishes
// or amends a program relevant to farmers.
type GovernmentUpdate struct {
	Scheme       string     `json:"scheme"`
	Ministry     string     `json:"ministry"`
	Title        string     `json:"title"`
	Summary      string     `json:"summary"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	ReferenceURL string     `json:"referenceUrl,omitempty"`
}
