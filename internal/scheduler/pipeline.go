package scheduler

import (
	"context"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/dispatch"
	"github.com/agritechlabs/agroalert-backend/internal/normalize"
	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/internal/preferences"
	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	pkgerrors "github.com/agritechlabs/agroalert-backend/pkg/errors"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
)

// Pipeline is the poll jobs' shared tail: fan an event's notification out to
// every opted-in user, append to the store and hand off to the dispatcher.
type Pipeline struct {
	store      *notifications.Store
	dispatcher *dispatch.Dispatcher
	prefs      preferences.Service
	logg       *logger.Logger
	now        func() time.Time
}

// PipelineParams configure a Pipeline.
type PipelineParams struct {
	Store      *notifications.Store
	Dispatcher *dispatch.Dispatcher
	Prefs      preferences.Service
	Logger     *logger.Logger
	Now        func() time.Time
}

// NewPipeline wires the poll pipeline.
func NewPipeline(params PipelineParams) (*Pipeline, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "store required")
	}
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dispatcher required")
	}
	if params.Prefs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "preferences service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		store:      params.Store,
		dispatcher: params.Dispatcher,
		prefs:      params.Prefs,
		logg:       params.Logger,
		now:        now,
	}, nil
}

// recipients lists users who want notifications of the given type.
func (p *Pipeline) recipients(ctx context.Context, t enums.NotificationType) ([]models.Preference, error) {
	prefs, err := p.prefs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := prefs[:0]
	for _, pref := range prefs {
		if pref.TypeEnabled(t) {
			out = append(out, pref)
		}
	}
	return out, nil
}

func (p *Pipeline) options(pref models.Preference) normalize.Options {
	return normalize.Options{
		UserID:      pref.UserID,
		Location:    pref.Location,
		EnableSMS:   pref.ChannelOptIn(enums.ChannelSMS),
		EnableEmail: pref.ChannelOptIn(enums.ChannelEmail),
	}
}

// deliver appends the notification and dispatches it. Appends within one poll
// cycle keep the adapter's emit order.
func (p *Pipeline) deliver(ctx context.Context, n notifications.Notification) {
	p.store.Append(n)
	p.dispatcher.Dispatch(ctx, n)
}
