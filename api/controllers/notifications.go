package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agritechlabs/agroalert-backend/api/middleware"
	"github.com/agritechlabs/agroalert-backend/api/responses"
	"github.com/agritechlabs/agroalert-backend/api/validators"
	"github.com/agritechlabs/agroalert-backend/internal/engine"
	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	pkgerrors "github.com/agritechlabs/agroalert-backend/pkg/errors"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/agritechlabs/agroalert-backend/pkg/pagination"
)

type listNotificationsResponse struct {
	Notifications []notifications.Notification `json:"notifications"`
	NextCursor    string                       `json:"nextCursor,omitempty"`
}

// ListNotifications returns the caller's notifications newest first, with
// AND-combined filters and cursor pagination.
func ListNotifications(eng *engine.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		params := notifications.QueryParams{UserID: userID}

		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			t := enums.NotificationType(raw)
			if !t.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type"))
				return
			}
			params.Type = t
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			c := enums.NotificationCategory(raw)
			if !c.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification category"))
				return
			}
			params.Category = c
		}

		isRead, err := validators.ParseQueryBool(r, "isRead")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.IsRead = isRead

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		cursor, err := validators.ParseQueryCursor(r, "cursor")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Cursor = cursor

		items, next := eng.Query(params)
		resp := listNotificationsResponse{Notifications: items}
		if next != nil {
			resp.NextCursor = pagination.EncodeCursor(*next)
		}
		responses.WriteSuccess(w, resp)
	}
}

// MarkNotificationRead flags one notification read. Unknown ids succeed; the
// operation is idempotent.
func MarkNotificationRead(eng *engine.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification id"))
			return
		}
		eng.MarkRead(id)
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// MarkAllNotificationsRead flags every unread notification of the caller.
func MarkAllNotificationsRead(eng *engine.Engine, _ *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		updated := eng.MarkAllRead(userID)
		responses.WriteSuccess(w, map[string]int{"updated": updated})
	}
}

// DeleteNotification removes one notification. Unknown ids succeed.
func DeleteNotification(eng *engine.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification id"))
			return
		}
		eng.Delete(id)
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// UnreadCount returns how many of the caller's notifications are unread.
func UnreadCount(eng *engine.Engine, _ *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		responses.WriteSuccess(w, map[string]int{"unreadCount": eng.UnreadCount(userID)})
	}
}
