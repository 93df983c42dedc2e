package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/dispatch"
	"github.com/agritechlabs/agroalert-backend/internal/events"
	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/internal/preferences"
	"github.com/agritechlabs/agroalert-backend/internal/subscriptions"
	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakePrefsService struct {
	prefs   []models.Preference
	listErr error
}

func (f *fakePrefsService) Update(context.Context, preferences.UpdateParams) (*models.Preference, error) {
	return nil, errors.New("not used")
}

func (f *fakePrefsService) Get(context.Context, uuid.UUID) (*models.Preference, error) {
	return nil, errors.New("not used")
}

func (f *fakePrefsService) List(context.Context) ([]models.Preference, error) {
	return f.prefs, f.listErr
}

func (f *fakePrefsService) InQuietHours(context.Context, uuid.UUID, time.Time) (bool, error) {
	return false, nil
}

type fakeWeatherSource struct {
	alerts []events.WeatherAlert
	err    error
}

func (f *fakeWeatherSource) Poll(context.Context) ([]events.WeatherAlert, error) {
	return f.alerts, f.err
}

type fakePriceSource struct {
	alerts []events.PriceAlert
}

func (f *fakePriceSource) Poll(context.Context) ([]events.PriceAlert, error) {
	return f.alerts, nil
}

type fakeSeasonalSource struct {
	tips []events.SeasonalTip
}

func (f *fakeSeasonalSource) Poll(context.Context) ([]events.SeasonalTip, error) {
	return f.tips, nil
}

type fakeGovernmentSource struct {
	updates []events.GovernmentUpdate
}

func (f *fakeGovernmentSource) Poll(context.Context) ([]events.GovernmentUpdate, error) {
	return f.updates, nil
}

type fakeSubsService struct {
	deactivated int64
	maxAges     []time.Duration
	err         error
}

func (f *fakeSubsService) Subscribe(context.Context, subscriptions.SubscribeParams) (*models.PushSubscription, error) {
	return nil, errors.New("not used")
}

func (f *fakeSubsService) ActiveForUser(context.Context, uuid.UUID) ([]models.PushSubscription, error) {
	return nil, nil
}

func (f *fakeSubsService) DeactivateStale(_ context.Context, maxAge time.Duration) (int64, error) {
	f.maxAges = append(f.maxAges, maxAge)
	return f.deactivated, f.err
}

func testPipeline(t *testing.T, prefs *fakePrefsService) (*Pipeline, *notifications.Store) {
	t.Helper()
	ctx := context.Background()
	logg := schedulerLogger()
	store, err := notifications.NewStore(ctx, notifications.StoreParams{Logger: logg})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	dispatcher, err := dispatch.NewDispatcher(dispatch.DispatcherParams{
		Channels: []dispatch.Channel{dispatch.NewInAppChannel()},
		Store:    store,
		Logger:   logg,
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	pipeline, err := NewPipeline(PipelineParams{
		Store:      store,
		Dispatcher: dispatcher,
		Prefs:      prefs,
		Logger:     logg,
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return pipeline, store
}

func weatherEvent() events.WeatherAlert {
	start := time.Date(2026, 6, 10, 6, 0, 0, 0, time.UTC)
	return events.WeatherAlert{
		Event:       "Hailstorm",
		Severity:    events.WeatherSeverityExtreme,
		Title:       "Hailstorm warning",
		Description: "Large hail expected",
		StartTime:   start,
		EndTime:     start.Add(6 * time.Hour),
		Areas:       []string{"Nashik"},
	}
}

func TestWeatherJobFansOutToOptedInUsers(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	prefs := &fakePrefsService{prefs: []models.Preference{
		{UserID: alice},
		{UserID: bob, Toggles: map[string]bool{string(enums.NotificationTypeWeather): false}},
	}}
	pipeline, store := testPipeline(t, prefs)

	job := NewWeatherPollJob(&fakeWeatherSource{alerts: []events.WeatherAlert{weatherEvent()}}, pipeline, time.Minute)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := store.Len(); got != 1 {
		t.Fatalf("stored notifications = %d, want 1", got)
	}
	items, _ := store.Query(notifications.QueryParams{UserID: alice})
	if len(items) != 1 {
		t.Fatalf("alice notifications = %d, want 1", len(items))
	}
	n := items[0]
	if n.Type != enums.NotificationTypeWeather || n.Priority != enums.PriorityCritical {
		t.Fatalf("got type=%s priority=%s", n.Type, n.Priority)
	}
	entry := n.Channel(enums.ChannelInApp)
	if entry == nil || !entry.Delivered {
		t.Fatal("expected in-app delivery to be recorded")
	}
}

func TestWeatherJobPropagatesSourceError(t *testing.T) {
	pipeline, _ := testPipeline(t, &fakePrefsService{})
	job := NewWeatherPollJob(&fakeWeatherSource{err: errors.New("gateway timeout")}, pipeline, time.Minute)
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected poll error to surface")
	}
}

func TestWeatherJobEmptyPollDeliversNothing(t *testing.T) {
	prefs := &fakePrefsService{prefs: []models.Preference{{UserID: uuid.New()}}, listErr: errors.New("unreachable")}
	pipeline, store := testPipeline(t, prefs)

	job := NewWeatherPollJob(&fakeWeatherSource{}, pipeline, time.Minute)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := store.Len(); got != 0 {
		t.Fatalf("stored notifications = %d, want 0", got)
	}
}

func TestPriceJobRespectsUserBands(t *testing.T) {
	inside := uuid.New()
	outside := uuid.New()
	noBand := uuid.New()
	band := models.PriceBand{Min: decimal.NewFromInt(2000), Max: decimal.NewFromInt(3000)}
	prefs := &fakePrefsService{prefs: []models.Preference{
		{UserID: inside, PriceThresholds: map[string]models.PriceBand{"wheat": band}},
		{UserID: outside, PriceThresholds: map[string]models.PriceBand{"wheat": {Min: decimal.NewFromInt(2600), Max: decimal.NewFromInt(2800)}}},
		{UserID: noBand},
	}}
	pipeline, store := testPipeline(t, prefs)

	alert := events.PriceAlert{
		Commodity:        "wheat",
		Market:           "Azadpur Mandi",
		Price:            decimal.NewFromInt(2500),
		PreviousPrice:    decimal.NewFromInt(2200),
		ChangePercentage: 13.6,
		Trend:            events.PriceTrendUp,
	}
	job := NewPricePollJob(&fakePriceSource{alerts: []events.PriceAlert{alert}}, pipeline, time.Minute)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if items, _ := store.Query(notifications.QueryParams{UserID: inside}); len(items) != 0 {
		t.Fatalf("price inside band should be suppressed; got %d", len(items))
	}
	if items, _ := store.Query(notifications.QueryParams{UserID: outside}); len(items) != 1 {
		t.Fatalf("price outside band should notify; got %d", len(items))
	}
	if items, _ := store.Query(notifications.QueryParams{UserID: noBand}); len(items) != 1 {
		t.Fatalf("user without band should always notify; got %d", len(items))
	}
}

func TestSeasonalJobDeliversTips(t *testing.T) {
	userID := uuid.New()
	prefs := &fakePrefsService{prefs: []models.Preference{{UserID: userID}}}
	pipeline, store := testPipeline(t, prefs)

	tip := events.SeasonalTip{
		Crop:       "cotton",
		Season:     "kharif",
		Importance: events.TipImportanceCritical,
		Title:      "Sowing window closing",
		Advice:     "Complete sowing before monsoon onset",
		ValidFrom:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
	}
	job := NewSeasonalPollJob(&fakeSeasonalSource{tips: []events.SeasonalTip{tip}}, pipeline, time.Minute)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	items, _ := store.Query(notifications.QueryParams{UserID: userID})
	if len(items) != 1 {
		t.Fatalf("notifications = %d, want 1", len(items))
	}
	if items[0].Priority != enums.PriorityHigh {
		t.Fatalf("critical tip priority = %s, want high", items[0].Priority)
	}
}

func TestGovernmentJobDeliversUpdates(t *testing.T) {
	userID := uuid.New()
	prefs := &fakePrefsService{prefs: []models.Preference{{UserID: userID}}}
	pipeline, store := testPipeline(t, prefs)

	deadline := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	update := events.GovernmentUpdate{
		Scheme:   "PM-KISAN",
		Ministry: "Ministry of Agriculture",
		Title:    "Installment registration open",
		Summary:  "Register before the deadline to receive the next installment",
		Deadline: &deadline,
	}
	job := NewGovernmentPollJob(&fakeGovernmentSource{updates: []events.GovernmentUpdate{update}}, pipeline, time.Minute)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	items, _ := store.Query(notifications.QueryParams{UserID: userID})
	if len(items) != 1 {
		t.Fatalf("notifications = %d, want 1", len(items))
	}
	n := items[0]
	if !n.ActionRequired || n.ExpiresAt == nil || !n.ExpiresAt.Equal(deadline) {
		t.Fatalf("deadline update should require action and expire at the deadline; got %+v", n)
	}
}

func TestEvictionJobRemovesExpired(t *testing.T) {
	ctx := context.Background()
	logg := schedulerLogger()
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	store, err := notifications.NewStore(ctx, notifications.StoreParams{
		Logger: logg,
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	expired := now.Add(-time.Hour)
	store.Append(notifications.Notification{ID: uuid.New(), UserID: uuid.New(), Timestamp: now, ExpiresAt: &expired})
	store.Append(notifications.Notification{ID: uuid.New(), UserID: uuid.New(), Timestamp: now})

	job := NewEvictionJob(store, logg, time.Minute)
	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("len after eviction = %d, want 1", got)
	}
}

func TestRetentionJobDeactivatesStale(t *testing.T) {
	subs := &fakeSubsService{deactivated: 3}
	job := NewRetentionJob(subs, schedulerLogger(), 30*24*time.Hour, time.Hour)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(subs.maxAges) != 1 || subs.maxAges[0] != 30*24*time.Hour {
		t.Fatalf("maxAges = %v, want one call with 720h", subs.maxAges)
	}

	subs.err = errors.New("db locked")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected repository error to surface")
	}
}
