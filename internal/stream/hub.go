package stream

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/google/uuid"
)

const clientSendBuffer = 32

// subscriber is one connected UI session. The hub only knows the user scope
// and the outbound byte channel; the transport lives in Client.
type subscriber struct {
	id     uuid.UUID
	userID uuid.UUID
	send   chan []byte
}

// Hub routes appended notifications to connected WebSocket sessions, scoped
// by user. It consumes the observer bus so the store never knows about
// transports.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*subscriber
	logg    *logger.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewHub builds a hub.
func NewHub(logg *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*subscriber),
		logg:    logg,
	}
}

// Run consumes the bus until the context is canceled.
func (h *Hub) Run(ctx context.Context, bus *Bus) {
	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.done = make(chan struct{})
	subID, events := bus.Subscribe()

	go func() {
		defer close(h.done)
		defer bus.Unsubscribe(subID)
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-events:
				if !ok {
					return
				}
				h.broadcast(n)
			}
		}
	}()
}

// Stop terminates the bus consumer and disconnects every session.
func (h *Hub) Stop() {
	if h.cancel != nil {
		h.cancel()
		<-h.done
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.clients {
		delete(h.clients, id)
		close(sub.send)
	}
}

// attach registers a session and returns its outbound channel.
func (h *Hub) attach(userID uuid.UUID) (uuid.UUID, chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub := &subscriber{id: uuid.New(), userID: userID, send: make(chan []byte, clientSendBuffer)}
	h.clients[sub.id] = sub
	return sub.id, sub.send
}

// detach removes a session. Idempotent; the write pump and the read pump can
// both race to detach on teardown.
func (h *Hub) detach(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(sub.send)
	}
}

// Connected reports the number of attached sessions.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast serializes the notification once and offers it to every session
// owned by the notification's user. Full session buffers drop the frame.
func (h *Hub) broadcast(n notifications.Notification) {
	frame, err := json.Marshal(streamEvent{Event: "notification.created", Notification: n})
	if err != nil {
		if h.logg != nil {
			h.logg.Error(context.Background(), "encode stream frame", err)
		}
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.clients {
		if sub.userID != n.UserID {
			continue
		}
		select {
		case sub.send <- frame:
		default:
		}
	}
}

type streamEvent struct {
	Event        string                     `json:"event"`
	Notification notifications.Notification `json:"notification"`
}
