package controllers

import (
	"net/http"
	"strings"

	"github.com/agritechlabs/agroalert-backend/api/middleware"
	"github.com/agritechlabs/agroalert-backend/api/responses"
	"github.com/agritechlabs/agroalert-backend/internal/engine"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
)

// Analytics summarizes the caller's notifications over a rolling window.
// The timeframe defaults to a week.
func Analytics(eng *engine.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		timeframe := enums.TimeframeWeek
		if raw := strings.TrimSpace(r.URL.Query().Get("timeframe")); raw != "" {
			timeframe = enums.AnalyticsTimeframe(raw)
		}

		summary, err := eng.Analytics(userID, timeframe)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
