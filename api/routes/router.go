package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agritechlabs/agroalert-backend/api/controllers"
	"github.com/agritechlabs/agroalert-backend/api/middleware"
	"github.com/agritechlabs/agroalert-backend/internal/engine"
	"github.com/agritechlabs/agroalert-backend/internal/stream"
	"github.com/agritechlabs/agroalert-backend/pkg/config"
	"github.com/agritechlabs/agroalert-backend/pkg/db"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/agritechlabs/agroalert-backend/pkg/redis"
)

// RouterParams carry everything the HTTP surface needs.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Engine   *engine.Engine
	Hub      *stream.Hub
	DB       db.Pinger
	Redis    redis.Pinger
	Registry *prometheus.Registry
}

// NewRouter builds the chi router with the full v1 surface.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger
	eng := params.Engine

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Get("/healthz", controllers.HealthLive(cfg))
	r.Get("/readyz", controllers.HealthReady(cfg, logg, params.DB, params.Redis))

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RequireUser(logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(eng, logg))
			r.Get("/unread-count", controllers.UnreadCount(eng, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(eng, logg))
			r.Post("/{id}/read", controllers.MarkNotificationRead(eng, logg))
			r.Delete("/{id}", controllers.DeleteNotification(eng, logg))
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", controllers.GetPreferences(eng, logg))
			r.Put("/", controllers.UpdatePreferences(eng, logg))
		})

		r.Route("/push", func(r chi.Router) {
			r.Post("/permission", controllers.RequestPushPermission(eng, logg))
			r.Post("/subscriptions", controllers.SubscribePush(eng, logg))
		})

		r.Get("/analytics", controllers.Analytics(eng, logg))
		r.Get("/stream", controllers.Stream(params.Hub, cfg.CORS.AllowedOrigins, logg))
	})

	return r
}
