package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"covid-dashboard/internal/config"
	"covid-dashboard/internal/domain/entity"
	hhttp "covid-dashboard/internal/handler/http"
	"covid-dashboard/internal/handler/http/dashboard"
	"covid-dashboard/internal/handler/http/requestid"
	"covid-dashboard/internal/infra/chart"
	"covid-dashboard/internal/infra/loader"
	"covid-dashboard/internal/infra/pdf"
	"covid-dashboard/internal/observability/logging"
	"covid-dashboard/internal/observability/tracing"
	"covid-dashboard/internal/usecase/analytics"
	"covid-dashboard/internal/usecase/report"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	dataset := loadDataset(logger, cfg)

	// Resolved once so the dashboard and every report build feature the
	// same country even when the configured default is absent.
	defaultCountry := dataset.DefaultCountry(cfg.DefaultCountry)
	if defaultCountry != cfg.DefaultCountry {
		logger.Warn("default country not in dataset, falling back",
			slog.String("configured", cfg.DefaultCountry),
			slog.String("fallback", defaultCountry))
	}

	reportSvc, handler := setupServer(logger, cfg, dataset, defaultCountry)

	buildInitialReport(logger, cfg, reportSvc, defaultCountry)
	stopSchedule := scheduleReportRebuild(logger, cfg, reportSvc, defaultCountry)
	defer stopSchedule()

	runServer(logger, cfg, handler)
}

// loadDataset loads the dataset at startup. The process must not serve
// with no data, so any load failure is fatal.
func loadDataset(logger *slog.Logger, cfg *config.Config) *entity.Dataset {
	csvLoader := &loader.CSVLoader{Logger: logger}
	dataset, _, err := csvLoader.Load(cfg.SourcePath)
	if err != nil {
		logger.Error("failed to load dataset",
			slog.String("path", cfg.SourcePath),
			slog.Any("error", err))
		os.Exit(1)
	}
	return dataset
}

// setupServer wires the services and returns the report service and the
// fully middleware-wrapped HTTP handler.
func setupServer(logger *slog.Logger, cfg *config.Config, dataset *entity.Dataset, defaultCountry string) (*report.Service, http.Handler) {
	analyticsSvc := &analytics.Service{Data: dataset}
	charts := &chart.Builder{Logger: logger}
	reportSvc := &report.Service{
		Analytics: analyticsSvc,
		Charts:    charts,
		Writer:    &pdf.Writer{},
		Logger:    logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/health", &hhttp.HealthHandler{Dataset: dataset, Version: version()})
	mux.Handle("/ready", &hhttp.ReadyHandler{Dataset: dataset})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	chartLimiter := hhttp.NewRateLimiter(cfg.ChartRateLimit, cfg.ChartRateBurst)
	dashboard.Register(mux, &dashboard.Handler{
		Analytics:      analyticsSvc,
		Charts:         charts,
		Reports:        reportSvc,
		Logger:         logger,
		DefaultCountry: defaultCountry,
		ReportPath:     cfg.ReportPath,
		TopN:           cfg.ReportTopN,
	}, chartLimiter.Middleware)

	return reportSvc, applyMiddleware(logger, mux)
}

// applyMiddleware wraps the handler with the middleware chain, applied
// in reverse order (innermost first):
// tracing → request ID → recover → logging → body limit → metrics → handler
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = requestid.Middleware(chain)
	chain = tracing.Middleware(chain)
	return chain
}

// buildInitialReport writes the report once at startup so the download
// link works immediately. A render failure here is logged and reported
// via metrics but is not fatal to the server.
func buildInitialReport(logger *slog.Logger, cfg *config.Config, reportSvc *report.Service, country string) {
	_, err := reportSvc.Build(context.Background(), report.Options{
		Path:    cfg.ReportPath,
		Country: country,
		TopN:    cfg.ReportTopN,
	})
	if err != nil {
		logger.Error("initial report build failed", slog.Any("error", err))
	}
}

// scheduleReportRebuild starts the optional cron schedule for report
// regeneration and returns a stop function.
func scheduleReportRebuild(logger *slog.Logger, cfg *config.Config, reportSvc *report.Service, country string) func() {
	if cfg.ReportCron == "" {
		return func() {}
	}
	c := cron.New()
	_, err := c.AddFunc(cfg.ReportCron, func() {
		if _, err := reportSvc.Build(context.Background(), report.Options{
			Path:    cfg.ReportPath,
			Country: country,
			TopN:    cfg.ReportTopN,
		}); err != nil {
			logger.Error("scheduled report build failed", slog.Any("error", err))
		}
	})
	if err != nil {
		logger.Error("invalid report cron schedule",
			slog.String("schedule", cfg.ReportCron),
			slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	logger.Info("report rebuild scheduled", slog.String("schedule", cfg.ReportCron))
	return func() { c.Stop() }
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg *config.Config, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Addr),
			slog.String("version", version()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

// version returns the application version from environment or default.
func version() string {
	v := os.Getenv("VERSION")
	if v == "" {
		v = "dev"
	}
	return v
}
