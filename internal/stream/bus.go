// Package stream fans appended notifications out to UI subscribers: an
// in-process observer bus, a WebSocket hub for connected clients, and an
// optional Pub/Sub publisher for downstream consumers.
package stream

import (
	"context"
	"sync"

	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/google/uuid"
)

const defaultSubscriberBuffer = 16

// Bus delivers appended notifications to in-process subscribers. Publishing
// never blocks; a subscriber that falls behind loses events, which is
// acceptable because the store remains the source of truth.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]chan notifications.Notification
	buffer int
	logg   *logger.Logger
	closed bool
}

// NewBus builds an observer bus.
func NewBus(logg *logger.Logger) *Bus {
	return &Bus{
		subs:   make(map[uuid.UUID]chan notifications.Notification),
		buffer: defaultSubscriberBuffer,
		logg:   logg,
	}
}

// Subscribe registers a new subscriber and returns its id and channel.
func (b *Bus) Subscribe() (uuid.UUID, <-chan notifications.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New()
	ch := make(chan notifications.Notification, b.buffer)
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown ids are a
// no-op.
func (b *Bus) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish hands the notification to every subscriber without blocking the
// appending goroutine. Full subscriber buffers drop the event.
func (b *Bus) Publish(n notifications.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for id, ch := range b.subs {
		select {
		case ch <- n:
		default:
			if b.logg != nil {
				b.logg.Warn(b.logg.WithField(context.Background(), "subscriber_id", id.String()),
					"slow subscriber dropped a notification event")
			}
		}
	}
}

// Close tears down all subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
