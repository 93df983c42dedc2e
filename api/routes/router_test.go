package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agritechlabs/agroalert-backend/internal/analytics"
	"github.com/agritechlabs/agroalert-backend/internal/dispatch"
	"github.com/agritechlabs/agroalert-backend/internal/engine"
	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/internal/preferences"
	"github.com/agritechlabs/agroalert-backend/internal/stream"
	"github.com/agritechlabs/agroalert-backend/internal/subscriptions"
	"github.com/agritechlabs/agroalert-backend/pkg/config"
	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
)

type stubPrefsRepo struct {
	mu    sync.Mutex
	prefs map[uuid.UUID]models.Preference
}

func (s *stubPrefsRepo) Upsert(_ context.Context, pref *models.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prefs == nil {
		s.prefs = make(map[uuid.UUID]models.Preference)
	}
	s.prefs[pref.UserID] = *pref
	return nil
}

func (s *stubPrefsRepo) Get(_ context.Context, userID uuid.UUID) (*models.Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pref, ok := s.prefs[userID]
	if !ok {
		return nil, nil
	}
	return &pref, nil
}

func (s *stubPrefsRepo) List(context.Context) ([]models.Preference, error) {
	return nil, nil
}

type stubSubsRepo struct{}

func (stubSubsRepo) Create(context.Context, *models.PushSubscription) error { return nil }
func (stubSubsRepo) ActiveForUser(context.Context, uuid.UUID) ([]models.PushSubscription, error) {
	return nil, nil
}
func (stubSubsRepo) DeactivateOlderThan(context.Context, time.Time, time.Time) (int64, error) {
	return 0, nil
}

type stubPermissions struct{}

func (stubPermissions) Grant(context.Context, uuid.UUID) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})

	bus := stream.NewBus(logg)
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
	prefsService, err := preferences.NewService(preferences.ServiceParams{Repo: &stubPrefsRepo{}, Logger: logg})
	if err != nil {
		t.Fatalf("preferences.NewService: %v", err)
	}
	subsService, err := subscriptions.NewService(subscriptions.ServiceParams{Repo: stubSubsRepo{}, Logger: logg})
	if err != nil {
		t.Fatalf("subscriptions.NewService: %v", err)
	}
	aggregator, err := analytics.NewAggregator(store, nil)
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	eng, err := engine.New(engine.Params{
		Logger:      logg,
		Store:       store,
		Dispatcher:  dispatcher,
		Prefs:       prefsService,
		Subs:        subsService,
		Aggregator:  aggregator,
		Permissions: stubPermissions{},
		Bus:         bus,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	cfg := &config.Config{}
	cfg.App.Env = "test"

	return NewRouter(RouterParams{
		Config:   cfg,
		Logger:   logg,
		Engine:   eng,
		Hub:      stream.NewHub(logg),
		Registry: prometheus.NewRegistry(),
	})
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, w.Code)
		}
	}
}

func TestRouterServesMetrics(t *testing.T) {
	router := newTestRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", w.Code)
	}
}

func TestRouterRequiresUserHeader(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/notifications", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without header = %d, want 401", w.Code)
	}

	r := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	r.Header.Set("X-User-ID", "not-a-uuid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status with bad header = %d, want 401", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	r.Header.Set("X-User-ID", uuid.NewString())
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status with valid header = %d, want 200", w.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
