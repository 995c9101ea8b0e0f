package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	"github.com/rsvphub/rsvp-api/internal/config"
	"github.com/rsvphub/rsvp-api/internal/logging"
	"github.com/rsvphub/rsvp-api/internal/metrics"
	"github.com/rsvphub/rsvp-api/internal/middleware"
	"github.com/rsvphub/rsvp-api/internal/routes"
	"github.com/rsvphub/rsvp-api/internal/storage"
	apperrors "github.com/rsvphub/rsvp-api/pkg/errors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logging.New(cfg)

	// Initialize metrics
	if err := metrics.Init(); err != nil {
		logger.WithError(err).Fatal("Failed to initialize metrics")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "RSVP API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return c.Status(appErr.HTTPStatus()).JSON(appErr.ToErrorResponse())
			}

			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}

			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"status": code,
			}).Error("Request error")

			return c.Status(code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "INTERNAL_ERROR",
					"message": "Internal server error",
				},
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		MaxAge:       86400,
	}))

	// pprof for memory profiling (accessible at /debug/pprof/)
	app.Use(pprof.New())

	// Initialize middleware manager
	middlewareManager := middleware.NewManager(cfg, logger)

	// Open the SQLite store
	store, err := storage.Open(&cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}

	// Seed the admin credential on first boot
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.SeedAdmin(seedCtx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		cancel()
		logger.WithError(err).Fatal("Failed to seed admin credential")
	}
	cancel()

	// Setup routes
	routes.Setup(app, cfg, logger, middlewareManager, store)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Gracefully shutting down...")
		if err := app.Shutdown(); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
		if err := store.Close(); err != nil {
			logger.WithError(err).Error("Store close failed")
		}
	}()

	// Start server
	logger.WithField("port", cfg.Server.Port).Info("Starting RSVP API server")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
