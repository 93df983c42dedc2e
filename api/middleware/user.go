package middleware

import (
	"net/http"
	"strings"

	"github.com/agritechlabs/agroalert-backend/api/responses"
	pkgerrors "github.com/agritechlabs/agroalert-backend/pkg/errors"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/google/uuid"
)

const userIDHeader = "X-User-ID"

// RequireUser extracts the caller identity from the X-User-ID header and
// rejects requests that lack a parseable one. Authentication proper lives in
// front of this service.
func RequireUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(userIDHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing X-User-ID header"))
				return
			}
			userID, err := uuid.Parse(raw)
			if err != nil || userID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid X-User-ID header"))
				return
			}

			ctx := WithUserID(r.Context(), userID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
