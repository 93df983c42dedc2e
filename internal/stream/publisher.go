package stream

import (
	"context"
	"encoding/json"
	"time"

	pubsubv2 "cloud.google.com/go/pubsub/v2"
	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/agritechlabs/agroalert-backend/pkg/pubsub"
)

const publishTimeout = 10 * time.Second

// Publisher mirrors appended notifications onto the Pub/Sub event topic for
// downstream consumers. The in-process bus stays the primary mechanism; this
// mirror is best-effort and failures only get logged.
type Publisher struct {
	topic  *pubsubv2.Publisher
	logg   *logger.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPublisher builds a publisher over the configured notification topic.
// Returns nil when the client is not configured; callers treat a nil
// publisher as disabled.
func NewPublisher(client *pubsub.Client, logg *logger.Logger) *Publisher {
	if client == nil {
		return nil
	}
	topic := client.NotificationPublisher()
	if topic == nil {
		return nil
	}
	return &Publisher{topic: topic, logg: logg}
}

// Run consumes the bus until the context is canceled.
func (p *Publisher) Run(ctx context.Context, bus *Bus) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	subID, events := bus.Subscribe()

	go func() {
		defer close(p.done)
		defer bus.Unsubscribe(subID)
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-events:
				if !ok {
					return
				}
				p.publish(ctx, n)
			}
		}
	}()
}

// Stop terminates the consumer and flushes outstanding publishes.
func (p *Publisher) Stop() {
	if p == nil || p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.topic.Stop()
}

func (p *Publisher) publish(ctx context.Context, n notifications.Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		p.logg.Error(ctx, "encode notification event", err)
		return
	}
	pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	result := p.topic.Publish(pubCtx, &pubsubv2.Message{
		Data: body,
		Attributes: map[string]string{
			"event":   "notification.created",
			"type":    string(n.Type),
			"user_id": n.UserID.String(),
		},
	})
	if _, err := result.Get(pubCtx); err != nil {
		p.logg.Error(pubCtx, "publish notification event", err)
	}
}
