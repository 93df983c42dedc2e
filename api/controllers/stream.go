package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/agritechlabs/agroalert-backend/api/middleware"
	"github.com/agritechlabs/agroalert-backend/internal/stream"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
)

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// Stream upgrades the request to a WebSocket and feeds the caller their
// notification events as they are created.
func Stream(hub *stream.Hub, allowedOrigins []string, logg *logger.Logger) http.HandlerFunc {
	upgrader := newUpgrader(allowedOrigins)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the error response.
			logg.Warn(logg.WithField(r.Context(), "upgrade_error", err.Error()), "websocket upgrade failed")
			return
		}

		client := stream.NewClient(hub, conn, userID, logg)
		go client.WritePump()
		go client.ReadPump()
	}
}
