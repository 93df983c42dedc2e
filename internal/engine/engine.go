package engine

import (
	"context"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/analytics"
	"github.com/agritechlabs/agroalert-backend/internal/dispatch"
	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/internal/preferences"
	"github.com/agritechlabs/agroalert-backend/internal/stream"
	"github.com/agritechlabs/agroalert-backend/internal/subscriptions"
	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	pkgerrors "github.com/agritechlabs/agroalert-backend/pkg/errors"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/agritechlabs/agroalert-backend/pkg/pagination"
	"github.com/google/uuid"
)

// PermissionGranter records a user's push permission grant.
type PermissionGranter interface {
	Grant(ctx context.Context, userID uuid.UUID) error
}

// Params carry every collaborator the engine fronts. All are wired in main;
// the engine holds no globals.
type Params struct {
	Logger      *logger.Logger
	Store       *notifications.Store
	Dispatcher  *dispatch.Dispatcher
	Prefs       preferences.Service
	Subs        subscriptions.Service
	Aggregator  *analytics.Aggregator
	Permissions PermissionGranter
	Bus         *stream.Bus
}

// Engine is the single facade the HTTP layer talks to. It owns no business
// rules of its own; every call lands on the collaborator that does.
type Engine struct {
	logg        *logger.Logger
	store       *notifications.Store
	dispatcher  *dispatch.Dispatcher
	prefs       preferences.Service
	subs        subscriptions.Service
	aggregator  *analytics.Aggregator
	permissions PermissionGranter
	bus         *stream.Bus
}

// New wires the engine facade.
func New(params Params) (*Engine, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "store required")
	}
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dispatcher required")
	}
	if params.Prefs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "preferences service required")
	}
	if params.Subs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions service required")
	}
	if params.Aggregator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "aggregator required")
	}
	if params.Permissions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "permission store required")
	}
	if params.Bus == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "bus required")
	}
	return &Engine{
		logg:        params.Logger,
		store:       params.Store,
		dispatcher:  params.Dispatcher,
		prefs:       params.Prefs,
		subs:        params.Subs,
		aggregator:  params.Aggregator,
		permissions: params.Permissions,
		bus:         params.Bus,
	}, nil
}

// UpdateConfig overwrites the user's preferences wholesale.
func (e *Engine) UpdateConfig(ctx context.Context, params preferences.UpdateParams) (*models.Preference, error) {
	return e.prefs.Update(ctx, params)
}

// GetConfig returns the user's preferences, nil when none are stored.
func (e *Engine) GetConfig(ctx context.Context, userID uuid.UUID) (*models.Preference, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return e.prefs.Get(ctx, userID)
}

// RequestPermission records the user's push permission grant. Push delivery
// stays silent until this has been called.
func (e *Engine) RequestPermission(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return e.permissions.Grant(ctx, userID)
}

// SubscribePush registers a push endpoint for the user.
func (e *Engine) SubscribePush(ctx context.Context, params subscriptions.SubscribeParams) (*models.PushSubscription, error) {
	return e.subs.Subscribe(ctx, params)
}

// Query lists notifications newest first with AND-combined filters.
func (e *Engine) Query(params notifications.QueryParams) ([]notifications.Notification, *pagination.Cursor) {
	return e.store.Query(params)
}

// MarkRead flags one notification read. Unknown ids are a no-op.
func (e *Engine) MarkRead(id uuid.UUID) {
	e.store.MarkRead(id)
}

// MarkAllRead flags every unread notification of the user, returning how many
// flipped.
func (e *Engine) MarkAllRead(userID uuid.UUID) int {
	return e.store.MarkAllRead(userID)
}

// Delete removes one notification. Unknown ids are a no-op.
func (e *Engine) Delete(id uuid.UUID) {
	e.store.Delete(id)
}

// UnreadCount counts the user's unread notifications.
func (e *Engine) UnreadCount(userID uuid.UUID) int {
	return e.store.UnreadCount(userID)
}

// Analytics summarizes the user's delivery and read behavior over the rolling
// window.
func (e *Engine) Analytics(userID uuid.UUID, timeframe enums.AnalyticsTimeframe) (*analytics.Summary, error) {
	return e.aggregator.Aggregate(userID, timeframe)
}

// Subscribe attaches an observer for newly created notifications.
func (e *Engine) Subscribe() (uuid.UUID, <-chan notifications.Notification) {
	return e.bus.Subscribe()
}

// Unsubscribe detaches an observer and closes its channel.
func (e *Engine) Unsubscribe(id uuid.UUID) {
	e.bus.Unsubscribe(id)
}

// Shutdown closes the observer bus. Pending fire-and-forget writes get a
// short grace period.
func (e *Engine) Shutdown(ctx context.Context) {
	e.bus.Close()
	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
	}
	e.logg.Info(ctx, "engine stopped")
}
