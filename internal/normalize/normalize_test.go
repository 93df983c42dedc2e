package normalize

import (
	"testing"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/events"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 4, 12, 9, 30, 0, 0, time.UTC)

func testOpts() Options {
	return Options{UserID: uuid.New(), Location: "Nashik"}
}

func TestWeatherExtremeSeverity(t *testing.T) {
	end := testNow.Add(24 * time.Hour)
	ev := events.WeatherAlert{
		Event:       "Cyclonic storm",
		Severity:    events.WeatherSeverityExtreme,
		Title:       "Cyclone warning",
		Description: "Winds above 120 km/h expected",
		StartTime:   testNow,
		EndTime:     end,
		Areas:       []string{"Nashik", "Pune"},
	}

	n := Weather(ev, testNow, testOpts())

	if n.Category != enums.NotificationCategoryAlert {
		t.Fatalf("extreme severity must map to alert, got %s", n.Category)
	}
	if n.Priority != enums.PriorityCritical {
		t.Fatalf("extreme severity must map to critical, got %s", n.Priority)
	}
	if n.ExpiresAt == nil || !n.ExpiresAt.Equal(end) {
		t.Fatalf("expiry must be the alert end time, got %v", n.ExpiresAt)
	}
	if !n.ActionRequired {
		t.Fatal("weather alerts always require action")
	}
	if n.Payload.Weather == nil || n.Payload.Weather.Event != "Cyclonic storm" {
		t.Fatal("payload must carry the source event")
	}
}

func TestWeatherBelowExtremeIsWarning(t *testing.T) {
	ev := events.WeatherAlert{
		Severity: events.WeatherSeverityHigh,
		EndTime:  testNow.Add(12 * time.Hour),
	}
	n := Weather(ev, testNow, testOpts())
	if n.Category != enums.NotificationCategoryWarning || n.Priority != enums.PriorityHigh {
		t.Fatalf("high severity should map to warning/high, got %s/%s", n.Category, n.Priority)
	}
}

func TestPriceThresholds(t *testing.T) {
	cases := []struct {
		name         string
		change       float64
		wantCategory enums.NotificationCategory
		wantPriority enums.NotificationPriority
	}{
		{"below both thresholds", 8, enums.NotificationCategoryInfo, enums.PriorityMedium},
		{"twelve percent is alert but still medium", 12, enums.NotificationCategoryAlert, enums.PriorityMedium},
		{"above fifteen escalates priority", 18, enums.NotificationCategoryAlert, enums.PriorityHigh},
		{"negative swings count by magnitude", -16, enums.NotificationCategoryAlert, enums.PriorityHigh},
		{"exactly ten stays info", 10, enums.NotificationCategoryInfo, enums.PriorityMedium},
		{"exactly fifteen stays medium", 15, enums.NotificationCategoryAlert, enums.PriorityMedium},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := events.PriceAlert{
				Commodity:        "Onion",
				Market:           "Lasalgaon",
				Price:            decimal.NewFromInt(2400),
				PreviousPrice:    decimal.NewFromInt(2100),
				ChangePercentage: tc.change,
				Trend:            events.PriceTrendUp,
			}
			n := Price(ev, testNow, testOpts())
			if n.Category != tc.wantCategory {
				t.Fatalf("category: want %s, got %s", tc.wantCategory, n.Category)
			}
			if n.Priority != tc.wantPriority {
				t.Fatalf("priority: want %s, got %s", tc.wantPriority, n.Priority)
			}
			if !n.ActionRequired {
				t.Fatal("price alerts always require action")
			}
		})
	}
}

func TestSeasonalImportance(t *testing.T) {
	ev := events.SeasonalTip{
		Crop:       "Wheat",
		Season:     "rabi",
		Importance: events.TipImportanceCritical,
		Title:      "Sowing window closing",
		Advice:     "Complete sowing within the next week",
	}
	n := Seasonal(ev, testNow, testOpts())
	if n.Category != enums.NotificationCategoryTip {
		t.Fatalf("tips always map to the tip category, got %s", n.Category)
	}
	if n.Priority != enums.PriorityHigh {
		t.Fatalf("critical importance must map to high, got %s", n.Priority)
	}
	if n.ActionRequired {
		t.Fatal("tips never require action")
	}
	if n.RelatedCrop != "Wheat" {
		t.Fatalf("related crop lost: %q", n.RelatedCrop)
	}

	ev.Importance = events.TipImportanceHigh
	if n := Seasonal(ev, testNow, testOpts()); n.Priority != enums.PriorityMedium {
		t.Fatalf("non-critical importance must map to medium, got %s", n.Priority)
	}
}

func TestGovernmentDeadline(t *testing.T) {
	deadline := testNow.Add(10 * 24 * time.Hour)
	ev := events.GovernmentUpdate{
		Scheme:       "PM-KISAN",
		Ministry:     "Ministry of Agriculture",
		Title:        "Enrollment window open",
		Summary:      "Register before the deadline to receive the next installment",
		Deadline:     &deadline,
		ReferenceURL: "https://pmkisan.gov.in",
	}

	n := Government(ev, testNow, testOpts())
	if n.Category != enums.NotificationCategoryUpdate {
		t.Fatalf("updates always map to the update category, got %s", n.Category)
	}
	if n.Priority != enums.PriorityHigh || !n.ActionRequired {
		t.Fatalf("a deadline must make the update actionable and high priority, got %s/%v", n.Priority, n.ActionRequired)
	}
	if n.ExpiresAt == nil || !n.ExpiresAt.Equal(deadline) {
		t.Fatalf("expiry must follow the deadline, got %v", n.ExpiresAt)
	}
	if n.ActionURL != "https://pmkisan.gov.in" {
		t.Fatalf("reference url lost: %q", n.ActionURL)
	}

	ev.Deadline = nil
	n = Government(ev, testNow, testOpts())
	if n.Priority != enums.PriorityMedium || n.ActionRequired || n.ExpiresAt != nil {
		t.Fatalf("without a deadline the update stays medium and passive, got %+v", n)
	}
}

func TestDefaultChannelOrderAndOptIns(t *testing.T) {
	n := Weather(events.WeatherAlert{EndTime: testNow}, testNow, testOpts())
	wantOrder := []enums.DeliveryChannel{enums.ChannelPush, enums.ChannelInApp, enums.ChannelSMS, enums.ChannelEmail}
	if len(n.Channels) != len(wantOrder) {
		t.Fatalf("expected %d channels, got %d", len(wantOrder), len(n.Channels))
	}
	for i, ch := range n.Channels {
		if ch.Channel != wantOrder[i] {
			t.Fatalf("channel order broken at %d: %s", i, ch.Channel)
		}
		if ch.Delivered || ch.DeliveredAt != nil || ch.Error != "" {
			t.Fatal("delivery state must start clean")
		}
	}
	if !n.Channels[0].Enabled || !n.Channels[1].Enabled {
		t.Fatal("push and in-app are enabled by default")
	}
	if n.Channels[2].Enabled || n.Channels[3].Enabled {
		t.Fatal("sms and email stay disabled without an opt-in")
	}

	opts := testOpts()
	opts.EnableSMS = true
	opts.EnableEmail = true
	n = Weather(events.WeatherAlert{EndTime: testNow}, testNow, opts)
	if !n.Channels[2].Enabled || !n.Channels[3].Enabled {
		t.Fatal("opt-ins must enable sms and email")
	}
}

func TestNormalizerIsPureOfStore(t *testing.T) {
	opts := testOpts()
	a := Weather(events.WeatherAlert{Title: "x", EndTime: testNow}, testNow, opts)
	b := Weather(events.WeatherAlert{Title: "x", EndTime: testNow}, testNow, opts)
	if a.ID == b.ID {
		t.Fatal("each normalization must mint a fresh identity")
	}
	if a.Timestamp != b.Timestamp || a.Title != b.Title {
		t.Fatal("same inputs must produce the same mapped fields")
	}
}
