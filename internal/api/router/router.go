package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tesla-electricidad/intake-engine/internal/appointments"
	"github.com/tesla-electricidad/intake-engine/internal/catalog"
	httpmiddleware "github.com/tesla-electricidad/intake-engine/internal/http/middleware"
	"github.com/tesla-electricidad/intake-engine/internal/intake"
	"github.com/tesla-electricidad/intake-engine/internal/leads"
	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	ChatHandler         *intake.Handler
	CatalogHandler      *catalog.Handler
	LeadsHandler        *leads.Handler
	AppointmentsHandler *appointments.Handler
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	CORSAllowedOrigins  []string
	ChatRatePerSecond   float64
	ChatBurst           int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	chatRate := cfg.ChatRatePerSecond
	if chatRate <= 0 {
		chatRate = 5
	}
	chatBurst := cfg.ChatBurst
	if chatBurst <= 0 {
		chatBurst = 10
	}

	// One bucket shared by every unauthenticated write endpoint.
	writeLimit := httpmiddleware.RateLimit(chatRate, chatBurst)

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.ChatHandler != nil {
			public.With(writeLimit).Post("/api/chat", cfg.ChatHandler.Chat)
		}
		if cfg.CatalogHandler != nil {
			public.Get("/api/services", cfg.CatalogHandler.ListServices)
		}
		if cfg.LeadsHandler != nil {
			public.With(writeLimit).Post("/api/leads", cfg.LeadsHandler.Create)
		}
		if cfg.AppointmentsHandler != nil {
			public.With(writeLimit).Post("/api/appointments", cfg.AppointmentsHandler.Create)
		}
	})

	// Back-office endpoints
	r.Group(func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		if cfg.LeadsHandler != nil {
			admin.Route("/api/leads", func(r chi.Router) {
				r.Get("/", cfg.LeadsHandler.List)
				r.Patch("/{id}/status", cfg.LeadsHandler.UpdateStatus)
			})
			admin.Get("/api/dashboard", cfg.LeadsHandler.Dashboard)
		}
		if cfg.AppointmentsHandler != nil {
			admin.Route("/api/appointments", func(r chi.Router) {
				r.Get("/", cfg.AppointmentsHandler.ListByDate)
				r.Patch("/{id}/status", cfg.AppointmentsHandler.UpdateStatus)
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
