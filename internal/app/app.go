package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"opsreports/internal/config"
	apperrors "opsreports/internal/errors"
	"opsreports/internal/infrastructure"
	customMiddleware "opsreports/internal/middleware"
	"opsreports/internal/reports"
	"opsreports/internal/services"
	"opsreports/internal/storage"
	handlers "opsreports/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config   *config.Config
	Paths    *config.Paths
	Catalog  *config.Catalog
	Store    *storage.Store
	Driver   *reports.Driver
	Reports  *services.ReportService
	Health   *services.HealthService
	Metrics  *infrastructure.Metrics
	Registry *prometheus.Registry
	Router   *chi.Mux
	Server   *http.Server
	Logger   *slog.Logger
}

// NewApplication wires the pipeline, history store and HTTP surface from cfg
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, apperrors.NewConfigError("resolve paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewStorageError("create directories", err)
	}
	paths.LogPathResolution(logger)

	catalog, err := config.LoadCatalog(paths.CatalogFile)
	if err != nil {
		return nil, apperrors.NewConfigError("load report catalog", err)
	}

	store, err := storage.Open(paths.DBFile, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := infrastructure.NewMetrics(registry)

	driver := reports.NewDriver(catalog, cfg.Pipeline, paths,
		reports.WithStore(store),
		reports.WithMetrics(metrics),
		reports.WithLogger(logger))
	reportService := services.NewReportService(driver, store, paths.OutputDir, cfg.Pipeline.PromptLayout, logger)

	a := &Application{
		Config:   cfg,
		Paths:    paths,
		Catalog:  catalog,
		Store:    store,
		Driver:   driver,
		Reports:  reportService,
		Health:   services.NewHealthService(config.AppVersion, paths.OutputDir, store, reportService, logger),
		Metrics:  metrics,
		Registry: registry,
		Logger:   logger,
	}
	a.setupRouter()
	a.createServer()

	logger.Info("application initialized",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("reports", len(catalog.Reports)))
	return a, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger, false)

	r.Use(middleware.RequestID)
	r.Use(customMiddleware.TraceID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger, a.Metrics))
	r.Use(errorHandler.Middleware)

	r.NotFound(errorHandler.NotFound)

	healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
	runLimiter := customMiddleware.NewRateLimiter(a.Config.Server.RunRate, a.Config.Server.RunBurst, a.Logger, errorHandler)
	reportsHandler := handlers.NewReportsHandler(a.Reports, a.Logger, errorHandler, runLimiter.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Mount("/", reportsHandler.Routes())
	})

	r.Handle("/charts/*", http.StripPrefix("/charts/", http.FileServer(http.Dir(a.Paths.OutputDir))))
	r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{Registry: a.Registry}))

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully within the configured timeout.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if cerr := a.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Close releases the run history store
func (a *Application) Close() error {
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	return err
}
