package adapters

import (
	"context"
	"math/rand"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/events"
	"github.com/shopspring/decimal"
)

// SimulatorParams seed the simulated sources. A fixed clock and seed make a
// poll fully deterministic, which the scheduler tests rely on.
type SimulatorParams struct {
	Now  func() time.Time
	Seed func() int64
}

func (p *SimulatorParams) normalize() {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Seed == nil {
		now := p.Now
		p.Seed = func() int64 { return now().UnixNano() }
	}
}

// WeatherSimulator emits a weather alert on roughly every third poll.
type WeatherSimulator struct {
	params SimulatorParams
}

// NewWeatherSimulator builds a simulated weather source.
func NewWeatherSimulator(params SimulatorParams) *WeatherSimulator {
	params.normalize()
	return &WeatherSimulator{params: params}
}

var weatherEvents = []struct {
	event       string
	title       string
	description string
	severity    events.WeatherSeverity
}{
	{"Heavy rainfall", "Heavy rain warning", "Over 100mm of rain expected in the next 24 hours", events.WeatherSeverityHigh},
	{"Heat wave", "Heat wave advisory", "Temperatures above 42C for the next three days", events.WeatherSeverityMedium},
	{"Hailstorm", "Hailstorm alert", "Hail likely; protect standing crops and harvested produce", events.WeatherSeverityExtreme},
	{"Frost", "Ground frost warning", "Night temperatures below 2C; sensitive crops at risk", events.WeatherSeverityHigh},
}

func (s *WeatherSimulator) Poll(ctx context.Context) ([]events.WeatherAlert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(s.params.Seed()))
	if rng.Intn(3) != 0 {
		return nil, nil
	}
	now := s.params.Now().UTC()
	pick := weatherEvents[rng.Intn(len(weatherEvents))]
	return []events.WeatherAlert{{
		Event:       pick.event,
		Severity:    pick.severity,
		Title:       pick.title,
		Description: pick.description,
		StartTime:   now,
		EndTime:     now.Add(time.Duration(6+rng.Intn(42)) * time.Hour),
		Areas:       []string{"Nashik", "Ahmednagar", "Pune"},
	}}, nil
}

// PriceSimulator emits a price alert whenever the simulated swing crosses
// five percent.
type PriceSimulator struct {
	params SimulatorParams
}

// NewPriceSimulator builds a simulated market source.
func NewPriceSimulator(params SimulatorParams) *PriceSimulator {
	params.normalize()
	return &PriceSimulator{params: params}
}

var commodities = []struct {
	name   string
	market string
	base   int64
}{
	{"Onion", "Lasalgaon", 2400},
	{"Wheat", "Indore", 2150},
	{"Soybean", "Latur", 4600},
	{"Cotton", "Rajkot", 7100},
}

func (s *PriceSimulator) Poll(ctx context.Context) ([]events.PriceAlert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(s.params.Seed()))
	var out []events.PriceAlert
	for _, c := range commodities {
		change := (rng.Float64() - 0.5) * 40 // -20% .. +20%
		if change > -5 && change < 5 {
			continue
		}
		previous := decimal.NewFromInt(c.base)
		price := previous.Mul(decimal.NewFromFloat(1 + change/100)).Round(2)
		trend := events.PriceTrendUp
		if change < 0 {
			trend = events.PriceTrendDown
		}
		out = append(out, events.PriceAlert{
			Commodity:        c.name,
			Market:           c.market,
			Price:            price,
			PreviousPrice:    previous,
			ChangePercentage: change,
			Trend:            trend,
		})
	}
	return out, nil
}

// SeasonalSimulator emits at most one tip per poll.
type SeasonalSimulator struct {
	params SimulatorParams
}

// NewSeasonalSimulator builds a simulated advisory source.
func NewSeasonalSimulator(params SimulatorParams) *SeasonalSimulator {
	params.normalize()
	return &SeasonalSimulator{params: params}
}

var seasonalTips = []struct {
	crop       string
	season     string
	title      string
	advice     string
	importance events.TipImportance
}{
	{"Wheat", "rabi", "Sowing window update", "Complete sowing before mid November for best yields", events.TipImportanceHigh},
	{"Onion", "kharif", "Nursery preparation", "Prepare raised nursery beds; treat seed against damping off", events.TipImportanceMedium},
	{"Grape", "rabi", "Pruning reminder", "Finish forward pruning within the fortnight", events.TipImportanceCritical},
	{"Soybean", "kharif", "Pest scouting", "Scout for girdle beetle from the 30th day after sowing", events.TipImportanceMedium},
}

func (s *SeasonalSimulator) Poll(ctx context.Context) ([]events.SeasonalTip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(s.params.Seed()))
	if rng.Intn(2) != 0 {
		return nil, nil
	}
	now := s.params.Now().UTC()
	pick := seasonalTips[rng.Intn(len(seasonalTips))]
	return []events.SeasonalTip{{
		Crop:       pick.crop,
		Season:     pick.season,
		Importance: pick.importance,
		Title:      pick.title,
		Advice:     pick.advice,
		ValidFrom:  now,
		ValidUntil: now.Add(14 * 24 * time.Hour),
	}}, nil
}

// GovernmentSimulator emits a scheme update on roughly every fourth poll.
type GovernmentSimulator struct {
	params SimulatorParams
}

// NewGovernmentSimulator builds a simulated schemes source.
func NewGovernmentSimulator(params SimulatorParams) *GovernmentSimulator {
	params.normalize()
	return &GovernmentSimulator{params: params}
}

var schemes = []struct {
	scheme      string
	ministry    string
	title       string
	summary     string
	hasDeadline bool
	url         string
}{
	{"PM-KISAN", "Ministry of Agriculture", "Installment enrollment open", "Verify land records to receive the next installment", true, "https://pmkisan.gov.in"},
	{"PMFBY", "Ministry of Agriculture", "Crop insurance window", "Enroll kharif crops before the cutoff date", true, "https://pmfby.gov.in"},
	{"Soil Health Card", "Ministry of Agriculture", "Free soil testing drive", "Collect sampling kits from the local krishi kendra", false, ""},
}

func (s *GovernmentSimulator) Poll(ctx context.Context) ([]events.GovernmentUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(s.params.Seed()))
	if rng.Intn(4) != 0 {
		return nil, nil
	}
	pick := schemes[rng.Intn(len(schemes))]
	update := events.GovernmentUpdate{
		Scheme:       pick.scheme,
		Ministry:     pick.ministry,
		Title:        pick.title,
		Summary:      pick.summary,
		ReferenceURL: pick.url,
	}
	if pick.hasDeadline {
		deadline := s.params.Now().UTC().Add(time.Duration(7+rng.Intn(21)) * 24 * time.Hour)
		update.Deadline = &deadline
	}
	return []events.GovernmentUpdate{update}, nil
}
