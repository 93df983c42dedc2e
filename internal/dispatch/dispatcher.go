package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	pkgerrors "github.com/agritechlabs/agroalert-backend/pkg/errors"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/agritechlabs/agroalert-backend/pkg/metrics"
	"github.com/google/uuid"
)

// DeliveryStore applies observed delivery outcomes back onto the record.
type DeliveryStore interface {
	ApplyDeliveries(id uuid.UUID, channels []notifications.ChannelDelivery)
}

// Exporter mirrors finished delivery outcomes to an external sink. Optional;
// failures never reach the dispatch path.
type Exporter interface {
	ExportDeliveries(ctx context.Context, n notifications.Notification)
}

// Dispatcher runs every enabled channel for a notification and records the
// per-channel outcome. A failing channel never aborts its siblings.
type Dispatcher struct {
	channels map[string]Channel
	store    DeliveryStore
	metrics  *metrics.DeliveryMetrics
	exporter Exporter
	logg     *logger.Logger
	now      func() time.Time
}

// DispatcherParams configure a Dispatcher.
type DispatcherParams struct {
	Channels []Channel
	Store    DeliveryStore
	Metrics  *metrics.DeliveryMetrics
	Exporter Exporter
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewDispatcher wires dispatcher dependencies.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "delivery store required")
	}
	if len(params.Channels) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "at least one channel required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	channels := make(map[string]Channel, len(params.Channels))
	for _, ch := range params.Channels {
		channels[string(ch.Kind())] = ch
	}
	return &Dispatcher{
		channels: channels,
		store:    params.Store,
		metrics:  params.Metrics,
		exporter: params.Exporter,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Dispatch attempts delivery on every enabled channel and writes the
// outcomes back through the store. It works on its own copy; the store's
// record mutates only once, under the store's lock.
func (d *Dispatcher) Dispatch(ctx context.Context, n notifications.Notification) {
	working := n.Clone()
	for i := range working.Channels {
		entry := &working.Channels[i]
		if !entry.Enabled {
			continue
		}
		d.attempt(ctx, &working, entry)
	}

	d.store.ApplyDeliveries(working.ID, working.Channels)

	if d.exporter != nil {
		d.exporter.ExportDeliveries(ctx, working)
	}
}

func (d *Dispatcher) attempt(ctx context.Context, n *notifications.Notification, entry *notifications.ChannelDelivery) {
	chCtx := d.logg.WithChannel(ctx, string(entry.Channel))
	handler, ok := d.channels[string(entry.Channel)]
	if !ok {
		entry.Error = "no handler registered"
		d.incFailed(string(entry.Channel))
		d.logg.Warn(chCtx, "enabled channel has no registered handler")
		return
	}

	err := handler.Send(chCtx, n)
	switch {
	case err == nil:
		at := d.now().UTC()
		entry.Delivered = true
		entry.DeliveredAt = &at
		entry.Error = ""
		d.incDelivered(string(entry.Channel))
	case errors.Is(err, ErrChannelUnavailable):
		// Neither success nor failure; the entry stays untouched.
		d.incSkipped(string(entry.Channel))
	default:
		entry.Error = err.Error()
		d.incFailed(string(entry.Channel))
		d.logg.Warn(d.logg.WithField(chCtx, "delivery_error", err.Error()), "channel delivery failed")
	}
}

func (d *Dispatcher) incDelivered(channel string) {
	if d.metrics != nil {
		d.metrics.IncDelivered(channel)
	}
}

func (d *Dispatcher) incFailed(channel string) {
	if d.metrics != nil {
		d.metrics.IncFailed(channel)
	}
}

func (d *Dispatcher) incSkipped(channel string) {
	if d.metrics != nil {
		d.metrics.IncSkipped(channel)
	}
}
