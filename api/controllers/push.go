package controllers

import (
	"net/http"

	"github.com/agritechlabs/agroalert-backend/api/middleware"
	"github.com/agritechlabs/agroalert-backend/api/responses"
	"github.com/agritechlabs/agroalert-backend/api/validators"
	"github.com/agritechlabs/agroalert-backend/internal/engine"
	"github.com/agritechlabs/agroalert-backend/internal/subscriptions"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
)

type subscribePushBody struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	P256dh   string `json:"p256dh" validate:"required"`
	Auth     string `json:"auth" validate:"required"`
	Device   string `json:"device"`
	Browser  string `json:"browser"`
}

// RequestPushPermission records the caller's push permission grant. Until
// this is called push delivery skips silently.
func RequestPushPermission(eng *engine.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if err := eng.RequestPermission(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"permission": "granted"})
	}
}

// SubscribePush registers a push endpoint for the caller.
func SubscribePush(eng *engine.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body subscribePushBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := eng.SubscribePush(r.Context(), subscriptions.SubscribeParams{
			UserID:   middleware.UserIDFromContext(r.Context()),
			Endpoint: body.Endpoint,
			P256dh:   body.P256dh,
			Auth:     body.Auth,
			Device:   body.Device,
			Browser:  body.Browser,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sub)
	}
}
