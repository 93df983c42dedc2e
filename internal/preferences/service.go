package preferences

import (
	"context"
	"sync"
	"time"

	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	pkgerrors "github.com/agritechlabs/agroalert-backend/pkg/errors"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/google/uuid"
)

// PreferenceSchemaVersion tags stored preference rows.
const PreferenceSchemaVersion = 1

const quietTimeLayout = "15:04"

// Service owns per-user preference records: overwritten wholesale on update,
// persisted immediately, lazily loaded into the in-process cache on the
// first read-miss.
type Service interface {
	Update(ctx context.Context, params UpdateParams) (*models.Preference, error)
	Get(ctx context.Context, userID uuid.UUID) (*models.Preference, error)
	List(ctx context.Context) ([]models.Preference, error)
	InQuietHours(ctx context.Context, userID uuid.UUID, at time.Time) (bool, error)
}

// UpdateParams carry a wholesale preference overwrite.
type UpdateParams struct {
	UserID          uuid.UUID
	Toggles         map[string]bool
	Location        string
	Crops           []string
	PriceThresholds map[string]models.PriceBand
	AlertFrequency  enums.AlertFrequency
	QuietEnabled    bool
	QuietStart      string
	QuietEnd        string
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time

	mu    sync.RWMutex
	cache map[uuid.UUID]*models.Preference
}

// ServiceParams configure the preferences service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
	Now    func() time.Time
}

// NewService wires preferences dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "preferences repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:  params.Repo,
		logg:  params.Logger,
		now:   now,
		cache: make(map[uuid.UUID]*models.Preference),
	}, nil
}

func (s *service) Update(ctx context.Context, params UpdateParams) (*models.Preference, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	frequency := params.AlertFrequency
	if frequency == "" {
		frequency = enums.FrequencyImmediate
	}
	if !frequency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid alert frequency")
	}
	if params.QuietEnabled {
		if _, err := time.Parse(quietTimeLayout, params.QuietStart); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quiet hours start")
		}
		if _, err := time.Parse(quietTimeLayout, params.QuietEnd); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quiet hours end")
		}
	}
	for commodity, band := range params.PriceThresholds {
		if band.Min.GreaterThan(band.Max) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price threshold min above max for "+commodity)
		}
	}

	pref := &models.Preference{
		UserID:          params.UserID,
		Toggles:         params.Toggles,
		Location:        params.Location,
		Crops:           params.Crops,
		PriceThresholds: params.PriceThresholds,
		AlertFrequency:  frequency,
		QuietEnabled:    params.QuietEnabled,
		QuietStart:      params.QuietStart,
		QuietEnd:        params.QuietEnd,
		SchemaVersion:   PreferenceSchemaVersion,
		UpdatedAt:       s.now().UTC(),
	}
	if pref.Toggles == nil {
		pref.Toggles = map[string]bool{}
	}

	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist preferences")
	}

	// The cache keeps its own copy; callers may mutate the maps they passed
	// in (and the ones returned) without poisoning later reads.
	cached := pref.Clone()
	s.mu.Lock()
	s.cache[params.UserID] = &cached
	s.mu.Unlock()
	return pref, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Preference, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	s.mu.RLock()
	cached, ok := s.cache[userID]
	s.mu.RUnlock()
	if ok {
		out := cached.Clone()
		return &out, nil
	}

	pref, err := s.repo.Get(ctx, userID)
	if err != nil {
		// A persistence failure on read degrades to "not found"; memory
		// remains the source of truth for already-cached users.
		s.logg.Error(ctx, "preference load failed", err)
		return nil, nil
	}
	if pref == nil {
		return nil, nil
	}

	s.mu.Lock()
	s.cache[userID] = pref
	s.mu.Unlock()
	out := pref.Clone()
	return &out, nil
}

func (s *service) List(ctx context.Context) ([]models.Preference, error) {
	prefs, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list preferences")
	}
	return prefs, nil
}

// InQuietHours reports whether the instant falls inside the user's quiet
// window. Users without a configured window are never quiet.
func (s *service) InQuietHours(ctx context.Context, userID uuid.UUID, at time.Time) (bool, error) {
	pref, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if pref == nil || !pref.QuietEnabled {
		return false, nil
	}
	start, err := time.Parse(quietTimeLayout, pref.QuietStart)
	if err != nil {
		return false, nil
	}
	end, err := time.Parse(quietTimeLayout, pref.QuietEnd)
	if err != nil {
		return false, nil
	}

	minutes := at.Hour()*60 + at.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	if startMin <= endMin {
		return minutes >= startMin && minutes < endMin, nil
	}
	// Window wraps midnight, e.g. 22:00 to 06:00.
	return minutes >= startMin || minutes < endMin, nil
}
