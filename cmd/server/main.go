package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/foreign-arrivals/dashboard/internal/api"
	"github.com/foreign-arrivals/dashboard/internal/config"
	"github.com/foreign-arrivals/dashboard/internal/dashboard"
	"github.com/foreign-arrivals/dashboard/internal/dataset"
	"github.com/foreign-arrivals/dashboard/internal/observability"
	"github.com/foreign-arrivals/dashboard/internal/parser"
	"github.com/foreign-arrivals/dashboard/internal/storage"
	"github.com/foreign-arrivals/dashboard/internal/web"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const defaultConfigName = "ForeignArrivals.config"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "foreign-arrivals: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := observability.NewLogger(cfg.Advanced.LogLevel, cfg.Advanced.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	loader := parser.NewLoader(cfg.Data.ArrivalsFile, cfg.Data.PoeFile,
		parser.WithDateLayouts(cfg.Data.DateLayouts...),
		parser.WithLogger(logger),
	)
	provider := dataset.NewProvider(loader.Load, nil, logger, metrics)

	var engine dashboard.EngineFactory = dashboard.NewMemoryEngine
	if cfg.Processing.Engine == dashboard.EngineDuckDB {
		engine = dashboard.NewDuckDBEngine(storage.DuckOptions{
			Dir:         cfg.Advanced.DuckDBDirectory,
			Threads:     cfg.Advanced.DuckDBThreads,
			MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
		}, logger)
	}
	svc := dashboard.NewService(dashboard.Config{
		Provider: provider,
		Engine:   engine,
		Metrics:  metrics,
		Logger:   logger,
	})
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Processing.WarmOnStartup {
		// A failed load is remembered by the provider and reported per request
		if err := svc.Warm(ctx); err != nil {
			logger.Error("dataset warm-up failed", "error", err)
		}
	}

	h := api.NewHandler(svc, metrics, Version)
	readLimit, err := cfg.GetBodyLimitBytes()
	if err != nil {
		return err
	}
	wsHandler := api.NewWebSocketHandler(h, logger, readLimit)

	e := newEcho(cfg, logger)
	api.SetupMiddleware(e)
	api.RegisterRoutes(e, h, wsHandler)

	if web.HasEmbeddedFiles() {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warn("failed to register static routes", "error", err)
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	logger.Info("foreign arrivals dashboard starting",
		"version", Version,
		"build_time", BuildTime,
		"config", configPath,
		"listen", cfg.GetServerAddr(),
		"engine", cfg.Processing.Engine,
		"arrivals_file", cfg.Data.ArrivalsFile,
		"poe_file", cfg.Data.PoeFile,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// resolveConfigPath prefers FOREIGN_ARRIVALS_CONFIG, then the config file
// next to the executable.
func resolveConfigPath() (string, error) {
	if p := os.Getenv("FOREIGN_ARRIVALS_CONFIG"); p != "" {
		return p, nil
	}
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(exePath), defaultConfigName), nil
}

func newEcho(cfg *config.AppConfig, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" || path == "/metrics"
		},
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Status == api.StatusClientClosedRequest {
				logger.Debug("request abandoned by client", attrs...)
				return nil
			}
			if v.Error != nil {
				logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered", "error", err, "stack", string(stack))
			return err
		},
	}))

	if cfg.Processing.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Processing.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				// The upgrade needs the raw connection
				return c.Request().Header.Get(echo.HeaderUpgrade) != ""
			},
		}))
	}

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.GetAllowOrigins(),
			AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	return e
}
