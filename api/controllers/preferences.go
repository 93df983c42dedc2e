package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/agritechlabs/agroalert-backend/api/middleware"
	"github.com/agritechlabs/agroalert-backend/api/responses"
	"github.com/agritechlabs/agroalert-backend/api/validators"
	"github.com/agritechlabs/agroalert-backend/internal/engine"
	"github.com/agritechlabs/agroalert-backend/internal/preferences"
	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
)

type priceBandBody struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

type updatePreferencesBody struct {
	Toggles         map[string]bool          `json:"toggles"`
	Location        string                   `json:"location"`
	Crops           []string                 `json:"crops"`
	PriceThresholds map[string]priceBandBody `json:"priceThresholds"`
	AlertFrequency  string                   `json:"alertFrequency" validate:"omitempty,oneof=immediate hourly daily weekly"`
	QuietEnabled    bool                     `json:"quietEnabled"`
	QuietStart      string                   `json:"quietStart"`
	QuietEnd        string                   `json:"quietEnd"`
}

// GetPreferences returns the caller's stored preferences, null when none
// exist yet.
func GetPreferences(eng *engine.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		pref, err := eng.GetConfig(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pref)
	}
}

// UpdatePreferences overwrites the caller's preferences wholesale.
func UpdatePreferences(eng *engine.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body updatePreferencesBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := preferences.UpdateParams{
			UserID:         middleware.UserIDFromContext(r.Context()),
			Toggles:        body.Toggles,
			Location:       body.Location,
			Crops:          body.Crops,
			AlertFrequency: enums.AlertFrequency(body.AlertFrequency),
			QuietEnabled:   body.QuietEnabled,
			QuietStart:     body.QuietStart,
			QuietEnd:       body.QuietEnd,
		}
		if len(body.PriceThresholds) > 0 {
			params.PriceThresholds = make(map[string]models.PriceBand, len(body.PriceThresholds))
			for commodity, band := range body.PriceThresholds {
				params.PriceThresholds[commodity] = models.PriceBand{Min: band.Min, Max: band.Max}
			}
		}

		pref, err := eng.UpdateConfig(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pref)
	}
}
