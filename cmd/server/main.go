package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/clock"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/token"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// ERROR records are also persisted to system_logs in batches
	dbLogHandler := logging.NewDBHandler(database.DB, 5*time.Second)
	logging.WithDB(dbLogHandler)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Mail
	mail, err := mailer.New(cfg)
	if err != nil {
		slog.Error("mailer setup failed", "error", err)
		os.Exit(1)
	}
	notifications := mailer.NewDispatcher(mail, cfg.NotifyQueueSize)

	// Services
	clk := clock.System{}
	hasher := services.BcryptHasher{Cost: cfg.BcryptCost}
	credentials := services.NewCredentialStore(database.DB, hasher)
	otp := services.NewOTPChallenge(database.DB, credentials, clk, cfg.OTPTTL)
	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTExpiry, clk)

	authService := services.NewAuthService(credentials, otp, codec, mail)
	resetService := services.NewPasswordReset(database.DB, credentials, hasher, mail, clk, cfg.ResetTTL, cfg.ResetURLBase)
	principalService := services.NewPrincipalService(database.DB, hasher, cfg.PhoneRegion)
	reportService := services.NewReportService(database.DB)
	claimService := services.NewClaimService(database.DB, clk, notifications)

	if cfg.SeedAdminEmail != "" {
		created, err := principalService.SeedAdmin(&dto.RegisterRequest{
			Name:     cfg.SeedAdminName,
			Email:    cfg.SeedAdminEmail,
			Phone:    cfg.SeedAdminPhone,
			Password: cfg.SeedAdminPassword,
		})
		if err != nil {
			slog.Error("seed admin failed", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("seed admin created", "email", cfg.SeedAdminEmail)
		}
	}

	// Handlers
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, principalService, resetService),
		Health:     handlers.NewHealthHandler(database.DB),
		Principals: handlers.NewPrincipalHandler(principalService),
		Reports:    handlers.NewReportHandler(reportService, principalService),
		Claims:     handlers.NewClaimHandler(claimService, principalService),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, codec, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "direct_login", cfg.DirectLoginEnabled)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Drain queued notifications before the log sink goes away.
	notifications.Stop()
	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
