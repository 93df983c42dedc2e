package adapters

import (
	"context"
	"testing"
	"time"
)

func fixedParams(seed int64) SimulatorParams {
	now := time.Date(2026, 7, 1, 6, 0, 0, 0, time.UTC)
	return SimulatorParams{
		Now:  func() time.Time { return now },
		Seed: func() int64 { return seed },
	}
}

func TestWeatherSimulatorDeterministicForSeed(t *testing.T) {
	first, err := NewWeatherSimulator(fixedParams(42)).Poll(context.Background())
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	second, err := NewWeatherSimulator(fixedParams(42)).Poll(context.Background())
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("same seed must produce the same events: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Event != second[i].Event ||
			first[i].Severity != second[i].Severity ||
			!first[i].EndTime.Equal(second[i].EndTime) {
			t.Fatal("same seed must produce identical alerts")
		}
	}
}

func TestPriceSimulatorOnlyEmitsMeaningfulSwings(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		alerts, err := NewPriceSimulator(fixedParams(seed)).Poll(context.Background())
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for _, alert := range alerts {
			change := alert.ChangePercentage
			if change > -5 && change < 5 {
				t.Fatalf("seed %d: swing below threshold emitted: %v", seed, change)
			}
			if alert.Price.IsZero() || alert.PreviousPrice.IsZero() {
				t.Fatalf("seed %d: prices must be populated: %+v", seed, alert)
			}
		}
	}
}

func TestGovernmentSimulatorDeadlineShape(t *testing.T) {
	seen := false
	for seed := int64(0); seed < 60; seed++ {
		updates, err := NewGovernmentSimulator(fixedParams(seed)).Poll(context.Background())
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for _, u := range updates {
			seen = true
			if u.Scheme == "" || u.Ministry == "" || u.Title == "" {
				t.Fatalf("seed %d: incomplete update: %+v", seed, u)
			}
		}
	}
	if !seen {
		t.Fatal("expected at least one update across 60 seeds")
	}
}

func TestSimulatorsHonorContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSeasonalSimulator(fixedParams(1)).Poll(ctx); err == nil {
		t.Fatal("canceled context must abort the poll")
	}
}
