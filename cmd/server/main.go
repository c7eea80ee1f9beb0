package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/database"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/logging"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/observability"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/routes"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/services"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (tint on a dev terminal, JSON otherwise)
	consoleHandler := logging.Setup(cfg.LogLevel, cfg.IsProduction())

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	// Upstream tenant table
	registry := tenant.DefaultRegistry()
	if cfg.UpstreamsConfigPath != "" {
		var err error
		registry, err = tenant.LoadFromFile(cfg.UpstreamsConfigPath)
		if err != nil {
			slog.Error("failed to load upstream registry", "path", cfg.UpstreamsConfigPath, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("upstream registry loaded", "apps", len(registry.All()), "production", cfg.IsProduction())

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if seeded, err := database.SeedApplications(database.DB, database.DefaultApplications); err != nil {
		slog.Error("application seeding failed", "error", err)
		os.Exit(1)
	} else if seeded > 0 {
		slog.Info("applications seeded", "count", seeded)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(consoleHandler, pgLogHandler)))

	// Log cleanup
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	logging.StartCleanup(cleanupCtx, database.DB, cfg.LogRetentionDays)

	// Metrics
	promRegistry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promRegistry)

	// Services
	accountService := services.NewAccountService(database.DB)
	deviceService := services.NewDeviceService(database.DB)
	userService := services.NewUserService(database.DB)
	taskService := services.NewTaskService(database.DB)
	tokenService := services.NewTokenService(cfg)
	auth0Client := services.NewAuth0Client(cfg)
	verifyService := services.NewVerifyService(database.DB, cfg, auth0Client, accountService, deviceService, tokenService)
	principalService := services.NewPrincipalService(userService, accountService)
	proxyService := services.NewProxyService(cfg, registry, metrics)
	logoffService := services.NewLogoffService(proxyService, accountService)

	// Handlers
	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(userService, tokenService, verifyService, auth0Client, cfg.Auth0Domain, metrics),
		Proxy:     handlers.NewProxyHandler(proxyService, logoffService),
		Users:     handlers.NewUserHandler(userService),
		Tasks:     handlers.NewTaskHandler(taskService),
		Accounts:  handlers.NewAccountHandler(accountService, deviceService, cfg),
		Health:    handlers.NewHealthHandler(database.DB, registry),
		Docs:      handlers.NewDocsHandler(),
		WellKnown: handlers.NewWellKnownHandler(cfg.AppleAppIDs),
		Metrics:   adaptor.HTTPHandler(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.Metrics(metrics))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})
	app.Use(middleware.RequestMonitor(cfg))

	// Routes
	routes.Setup(app, cfg, h, principalService)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	stopCleanup()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// customErrorHandler catches anything a handler did not answer itself.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"trace_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		code = fiber.StatusInternalServerError
		message = "internal error"
	}

	return c.Status(code).JSON(dto.Response{
		Code:    code,
		Message: message,
	})
}
