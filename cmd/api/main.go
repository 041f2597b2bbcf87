package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tesla-electricidad/intake-engine/internal/api/router"
	"github.com/tesla-electricidad/intake-engine/internal/app/bootstrap"
	"github.com/tesla-electricidad/intake-engine/internal/appointments"
	"github.com/tesla-electricidad/intake-engine/internal/catalog"
	appconfig "github.com/tesla-electricidad/intake-engine/internal/config"
	"github.com/tesla-electricidad/intake-engine/internal/intake"
	"github.com/tesla-electricidad/intake-engine/internal/leads"
	"github.com/tesla-electricidad/intake-engine/internal/observability/metrics"
	"github.com/tesla-electricidad/intake-engine/internal/quotes"
	"github.com/tesla-electricidad/intake-engine/pkg/logging"
)

func main() {
	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting intake-engine API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := bootstrap.BuildDatabasePool(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	var leadsRepo leads.Repository
	var quotesRepo quotes.Repository
	var apptRepo appointments.Repository
	if pool != nil {
		leadsRepo = leads.NewPostgresRepository(pool)
		quotesRepo = quotes.NewPostgresRepository(pool)
		apptRepo = appointments.NewPostgresRepository(pool, logger)
	} else {
		logger.Warn("no DATABASE_URL configured, using in-memory storage")
		leadsRepo = leads.NewInMemoryRepository()
		quotesRepo = quotes.NewInMemoryRepository()
		apptRepo = appointments.NewInMemoryRepository()
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	sessionStore := bootstrap.BuildSessionStore(redisClient, cfg, logger)

	cat := catalog.Default(cfg.CatalogVersion)
	scheduler, err := appointments.NewScheduler(apptRepo, cfg.BusinessOpen, cfg.BusinessClose, cfg.OverlapBuffer, logger.Component("scheduler"))
	if err != nil {
		logger.Error("invalid business hours configuration", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	intakeMetrics := metrics.NewIntakeMetrics(registry)

	orchestrator := intake.NewOrchestrator(intake.OrchestratorDeps{
		Sessions:   sessionStore,
		Catalog:    cat,
		Leads:      leadsRepo,
		Quotes:     quotesRepo,
		Calculator: quotes.NewCalculator(cat, cfg.QuoteValidDays),
		Scheduler:  scheduler,
		Transcript: bootstrap.BuildTranscriptStore(cfg, logger),
		Notifier:   notifierOrNil(cfg, logger.Component("notify")),
		Metrics:    intakeMetrics,
		Logger:     logger.Component("intake"),
		MaxHistory: cfg.MaxTurnHistory,
	})

	r := router.New(&router.Config{
		Logger:              logger,
		ChatHandler:         intake.NewHandler(orchestrator, logger),
		CatalogHandler:      catalog.NewHandler(cat, logger),
		LeadsHandler:        leads.NewHandler(leadsRepo, logger),
		AppointmentsHandler: appointments.NewHandler(scheduler, apptRepo, logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// notifierOrNil avoids handing the orchestrator a typed nil interface.
func notifierOrNil(cfg *appconfig.Config, logger *logging.Logger) intake.Notifier {
	svc := bootstrap.BuildNotifier(cfg, logger)
	if svc == nil {
		return nil
	}
	return svc
}
