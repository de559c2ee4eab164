package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig wires the handlers into the router. Nil handlers leave their
// routes unmounted; admin routes also need AdminAuth. Client addresses come
// from X-Forwarded-For and X-Real-IP only when TrustProxy is set.
type RouterConfig struct {
	Pages           *PageHandler
	API             *APIHandler
	Admin           *AdminHandler
	AdminAuth       AdminAuthenticator
	Health          *HealthHandler
	Metrics         http.Handler
	SubmitRateLimit int
	AdminRateLimit  int
	TrustProxy      bool
	Logger          *slog.Logger
	Middleware      []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)

	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	// One limiter shared by both submission routes.
	submitLimit := RateLimit(cfg.SubmitRateLimit, logger)

	if cfg.Pages != nil {
		r.Get("/", cfg.Pages.Index)
		r.Get("/book/*", cfg.Pages.Book)
		r.With(submitLimit).Post("/submit", cfg.Pages.Submit)
	}

	if cfg.API != nil {
		r.Route("/api", func(r chi.Router) {
			r.Get("/week", cfg.API.Week)
			r.Get("/slots", cfg.API.Slots)
			r.With(submitLimit).Post("/bookings", cfg.API.CreateBooking)
		})
	}

	if cfg.Admin != nil && cfg.AdminAuth != nil {
		r.Route("/admin", func(r chi.Router) {
			// Throttled before authentication so bad credentials cannot
			// trigger unbounded argon2id work.
			r.Use(RateLimit(cfg.AdminRateLimit, logger))
			r.Use(RequireAdmin(cfg.AdminAuth, logger))
			r.Get("/schedules", cfg.Admin.ListSchedules)
			r.Put("/schedules/{day}", cfg.Admin.UpdateSchedule)
			r.Get("/bookings", cfg.Admin.ListBookings)
			r.Get("/bookings/export.xlsx", cfg.Admin.ExportBookings)
		})
	}

	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.Live)
		r.Get("/readyz", cfg.Health.Ready)
	}

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	return r
}
