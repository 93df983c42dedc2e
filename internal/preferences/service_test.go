package preferences

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	pkgerrors "github.com/agritechlabs/agroalert-backend/pkg/errors"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	stored  map[uuid.UUID]*models.Preference
	getErr  error
	upErr   error
	getHits int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stored: make(map[uuid.UUID]*models.Preference)}
}

func (f *fakeRepo) Upsert(_ context.Context, pref *models.Preference) error {
	if f.upErr != nil {
		return f.upErr
	}
	copied := *pref
	f.stored[pref.UserID] = &copied
	return nil
}

func (f *fakeRepo) Get(_ context.Context, userID uuid.UUID) (*models.Preference, error) {
	f.getHits++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.stored[userID], nil
}

func (f *fakeRepo) List(context.Context) ([]models.Preference, error) {
	out := make([]models.Preference, 0, len(f.stored))
	for _, pref := range f.stored {
		out = append(out, *pref)
	}
	return out, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestUpdateRejectsMissingUserID(t *testing.T) {
	svc := newTestService(t, newFakeRepo())
	_, err := svc.Update(context.Background(), UpdateParams{})
	if err == nil {
		t.Fatal("expected validation error for missing user id")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestUpdatePersistsImmediately(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	userID := uuid.New()

	pref, err := svc.Update(context.Background(), UpdateParams{
		UserID:   userID,
		Toggles:  map[string]bool{"price": false},
		Location: "Nashik",
		Crops:    []string{"onion", "grape"},
		PriceThresholds: map[string]models.PriceBand{
			"onion": {Min: decimal.NewFromInt(1800), Max: decimal.NewFromInt(3200)},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if pref.AlertFrequency != enums.FrequencyImmediate {
		t.Fatalf("empty frequency must default to immediate, got %s", pref.AlertFrequency)
	}
	if pref.SchemaVersion != PreferenceSchemaVersion {
		t.Fatal("stored preferences must carry the schema version")
	}
	if repo.stored[userID] == nil {
		t.Fatal("update must hit persistence immediately")
	}
	if pref.TypeEnabled(enums.NotificationTypePrice) {
		t.Fatal("explicit toggle off must stick")
	}
	if !pref.TypeEnabled(enums.NotificationTypeWeather) {
		t.Fatal("missing toggles default to enabled")
	}
}

func TestUpdateValidatesQuietWindowAndThresholds(t *testing.T) {
	svc := newTestService(t, newFakeRepo())
	userID := uuid.New()

	_, err := svc.Update(context.Background(), UpdateParams{
		UserID:       userID,
		QuietEnabled: true,
		QuietStart:   "25:99",
		QuietEnd:     "06:00",
	})
	if err == nil {
		t.Fatal("expected invalid quiet start to be rejected")
	}

	_, err = svc.Update(context.Background(), UpdateParams{
		UserID: userID,
		PriceThresholds: map[string]models.PriceBand{
			"wheat": {Min: decimal.NewFromInt(500), Max: decimal.NewFromInt(100)},
		},
	})
	if err == nil {
		t.Fatal("expected inverted price band to be rejected")
	}
}

func TestGetLazilyLoadsOnReadMiss(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	repo.stored[userID] = &models.Preference{UserID: userID, Location: "Pune", AlertFrequency: enums.FrequencyDaily}
	svc := newTestService(t, repo)

	pref, err := svc.Get(context.Background(), userID)
	if err != nil || pref == nil {
		t.Fatalf("expected lazily loaded preference, got %v %v", pref, err)
	}
	if repo.getHits != 1 {
		t.Fatalf("expected one repo read, got %d", repo.getHits)
	}

	// Second read is served from the cache.
	if _, err := svc.Get(context.Background(), userID); err != nil {
		t.Fatalf("cached read: %v", err)
	}
	if repo.getHits != 1 {
		t.Fatalf("expected cache hit, repo reads = %d", repo.getHits)
	}
}

func TestGetReadFailureDegradesToNotFound(t *testing.T) {
	repo := newFakeRepo()
	repo.getErr = errors.New("disk gone")
	svc := newTestService(t, repo)

	pref, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("read failure must not surface, got %v", err)
	}
	if pref != nil {
		t.Fatal("read failure must degrade to not found")
	}
}

func TestInQuietHours(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	userID := uuid.New()

	if _, err := svc.Update(context.Background(), UpdateParams{
		UserID:       userID,
		QuietEnabled: true,
		QuietStart:   "22:00",
		QuietEnd:     "06:00",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	cases := []struct {
		at   string
		want bool
	}{
		{"23:30", true},
		{"02:00", true},
		{"05:59", true},
		{"06:00", false},
		{"12:00", false},
		{"21:59", false},
		{"22:00", true},
	}
	for _, tc := range cases {
		at, _ := time.Parse("15:04", tc.at)
		got, err := svc.InQuietHours(context.Background(), userID, at)
		if err != nil {
			t.Fatalf("%s: %v", tc.at, err)
		}
		if got != tc.want {
			t.Fatalf("at %s: want %v, got %v", tc.at, tc.want, got)
		}
	}

	// Users without preferences are never quiet.
	quiet, err := svc.InQuietHours(context.Background(), uuid.New(), time.Now())
	if err != nil || quiet {
		t.Fatalf("expected no quiet window for unknown user, got %v %v", quiet, err)
	}
}

func TestServiceCacheImmuneToCallerMutation(t *testing.T) {
	svc := newTestService(t, newFakeRepo())
	ctx := context.Background()
	userID := uuid.New()
	weather := string(enums.NotificationTypeWeather)

	toggles := map[string]bool{weather: true}
	bands := map[string]models.PriceBand{
		"maize": {Min: decimal.NewFromInt(2000), Max: decimal.NewFromInt(3000)},
	}
	updated, err := svc.Update(ctx, UpdateParams{UserID: userID, Toggles: toggles, PriceThresholds: bands})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	// Mutating the maps handed to Update must not reach the cache.
	toggles[weather] = false
	bands["maize"] = models.PriceBand{Min: decimal.NewFromInt(1), Max: decimal.NewFromInt(2)}
	// Neither must mutating the maps Update handed back.
	updated.Toggles[weather] = false

	got, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.TypeEnabled(enums.NotificationTypeWeather) {
		t.Fatal("cache was poisoned through a caller-held map")
	}
	if band := got.PriceThresholds["maize"]; !band.Min.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("price band mutated through a caller-held map: %+v", band)
	}

	// Mutating a returned record must not poison the next read either.
	got.Toggles[weather] = false
	delete(got.PriceThresholds, "maize")

	again, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !again.TypeEnabled(enums.NotificationTypeWeather) {
		t.Fatal("cache was poisoned through a returned record")
	}
	if _, ok := again.PriceThresholds["maize"]; !ok {
		t.Fatal("price band vanished from the cache")
	}
}
