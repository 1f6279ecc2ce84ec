package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"astrochart/internal/config"
	"astrochart/internal/ephemeris"
	apierrors "astrochart/internal/errors"
	"astrochart/internal/infrastructure"
	customMiddleware "astrochart/internal/middleware"
	"astrochart/internal/services"
	handlers "astrochart/internal/transport/http"
	"astrochart/internal/validation"
	"astrochart/pkg/contracts"
)

// AppName is logged at startup
const AppName = "Astro Chart Service"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Engine        *ephemeris.MeeusEngine
	ChartService  *services.ChartService
	HealthService *services.HealthService
	ErrorHandler  *apierrors.ErrorHandler
	Metrics       *infrastructure.BusinessMetrics
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
}

// NewApplication loads configuration, initializes the process logger and
// builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires the application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("ephemeris_path", cfg.Ephemeris.Path))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, contracts.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.MeterOrNoop())
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	app.initializeServices()

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.Engine = ephemeris.NewMeeusEngine(a.Config.Ephemeris.Path, a.Logger)
	if a.Config.Ephemeris.Strict {
		a.Engine.WithStrictData()
	}
	a.ChartService = services.NewChartService(a.Engine, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(contracts.Version, a.Engine.DataPath(), a.Logger)
	a.ErrorHandler = apierrors.NewErrorHandler(a.Logger, a.Metrics, a.Config.Logging.Level == "debug")
}

// setupRouter builds the chi router.
// Order: RequestID, RealIP, OTel, access log, recovery, headers, CORS.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return err
	}
	r.Use(otelMiddleware.Handler)

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	chartHandler := handlers.NewChartHandler(a.ChartService, a.Logger, a.ErrorHandler, a.Config.Server.MaxBodyBytes)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		chartHandler.RegisterRoutes(r)
		healthHandler.RegisterRoutes(r)
	})

	handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP).RegisterRoutes(r)

	a.Router = r
	return nil
}

// getCORSConfig returns the CORS settings from configuration
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		MaxAge:         300,
		Logger:         a.Logger,
	}

	a.Logger.Info("CORS enabled",
		slog.Any("allowed_origins", cfg.AllowedOrigins))

	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Run listens on the configured address and serves until SIGINT or SIGTERM
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	return a.Serve(ctx, ln)
}

// Serve runs the server on ln until ctx is done, then shuts down gracefully
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "Application started successfully",
			slog.String("address", ln.Addr().String()))

		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// performStartupHealthCheck checks the ephemeris directory and, when
// configured, loads every series up front. Problems are reported, not fatal:
// without series files the engine runs on mean elements, or fails per
// request when strict.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	path := a.Engine.DataPath()
	count, err := validation.NewFileValidator(a.Logger).ValidateInputDirectory(path, ephemeris.SeriesFilePattern)
	if err != nil {
		return fmt.Errorf("ephemeris directory not usable: %w", err)
	}

	if a.Config.Ephemeris.Preload {
		if err := a.Engine.Preload(ctx); err != nil {
			return err
		}
	}

	mode := "vsop87"
	if count == 0 && !a.Engine.Strict() {
		mode = "mean_elements"
	}
	a.Logger.InfoContext(ctx, "Startup health check passed",
		slog.String("ephemeris_path", path),
		slog.Int("series_files", count),
		slog.String("ephemeris_mode", mode))
	return nil
}
