package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/bibbank/breachrisk/pkg/auth"
)

// RouterConfig configures cross-cutting HTTP middleware. A zero RateLimit
// disables rate limiting.
type RouterConfig struct {
	CORSOrigins []string
	RateLimit   int
	RateWindow  time.Duration
}

// NewRouter builds the HTTP API. Probes and /metrics bypass authentication
// and rate limiting. A nil jwtService disables authentication; otherwise
// training and imports require the admin role.
func NewRouter(cfg RouterConfig, h *Handler, health *HealthHandler, metrics http.Handler, jwtService *auth.JWTService) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", health.liveness)
	r.Get("/readyz", health.readiness)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, cfg.RateWindow))
		}
		r.Use(auth.HTTPMiddleware(jwtService))

		r.Post("/predict", h.predict)
		r.Post("/predict/magnitude", h.predictMagnitude)
		r.Get("/model", h.modelInfo)
		r.Get("/model/history", h.modelHistory)
		r.Get("/statistics", h.statistics)
		r.Get("/records", h.exportRecords)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireHTTPRole(auth.RoleAdmin))
			r.Post("/train", h.train)
			r.Post("/records", h.importRecords)
		})
	})

	return r
}
