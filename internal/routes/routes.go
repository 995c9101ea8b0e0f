package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/sirupsen/logrus"

	"github.com/rsvphub/rsvp-api/internal/config"
	"github.com/rsvphub/rsvp-api/internal/metrics"
	"github.com/rsvphub/rsvp-api/internal/middleware"
	"github.com/rsvphub/rsvp-api/internal/storage"
	apperrors "github.com/rsvphub/rsvp-api/pkg/errors"
)

// Setup configures all API routes
func Setup(app *fiber.App, cfg *config.Config, logger *logrus.Logger, middlewareManager *middleware.Manager, store *storage.Store) {
	// Create route handlers
	rsvpHandler := NewRSVPHandler(store, logger)
	exportHandler := NewExportHandler(store, cfg.Export.Dir, logger)
	authHandler := NewAuthHandler(store, middlewareManager.Auth, logger)
	adminHandler := NewAdminHandler(store, logger)

	// Health check endpoints (no auth required)
	app.Get("/healthz", healthCheck)
	app.Get("/readyz", readinessCheck(store))
	app.Get("/version", versionHandler)

	// Metrics endpoint (no auth required)
	app.Get(cfg.Metrics.Path, metrics.PrometheusHandler())

	// API routes with middleware
	api := app.Group("/api")
	api.Use(metrics.HTTPMetricsMiddleware())
	api.Use(middlewareManager.ErrorLogger.Handle())

	// Public endpoints. The submission route is rate limited per client IP:
	// it is the only endpoint exposed to the open internet without a token.
	if cfg.RateLimit.Enabled {
		api.Post("/rsvp", limiter.New(limiter.Config{
			Max:        cfg.RateLimit.Max,
			Expiration: cfg.RateLimit.Window,
		}), rsvpHandler.Submit)
	} else {
		api.Post("/rsvp", rsvpHandler.Submit)
	}

	// Unauthenticated by observed design; see DESIGN.md before changing.
	api.Get("/export-csv", exportHandler.Download)

	// Admin routes
	adminRoutes := api.Group("/admin")
	adminRoutes.Post("/login", authHandler.Login)

	// Protected routes (require a valid admin token)
	protected := adminRoutes.Group("")
	protected.Use(middlewareManager.Auth.Authenticate())
	protected.Get("/stats", adminHandler.Stats)
	protected.Get("/responses", adminHandler.List)
	protected.Post("/responses", adminHandler.Create)
	protected.Put("/responses/:id", adminHandler.Update)
	protected.Delete("/responses/:id", adminHandler.Delete)

	// 404 handler
	app.Use(notFoundHandler)
}

// respondAppError writes the standard JSON error body for an AppError
func respondAppError(c *fiber.Ctx, appErr *apperrors.AppError) error {
	return c.Status(appErr.HTTPStatus()).JSON(appErr.ToErrorResponse())
}

// healthCheck returns the health status of the service
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Router /healthz [get]
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "rsvp-api",
	})
}

// readinessCheck checks if the service is ready to accept traffic
// @Summary Readiness check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Ready"
// @Failure 503 {object} map[string]interface{} "Not ready"
// @Router /readyz [get]
func readinessCheck(store *storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":    "not ready",
				"reason":    "database unavailable",
				"error":     err.Error(),
				"timestamp": time.Now().UTC(),
			})
		}

		return c.JSON(fiber.Map{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "rsvp-api",
		})
	}
}

// versionHandler returns version information
// @Summary Version information
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Version info"
// @Router /version [get]
func versionHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "rsvp-api",
		"version": getVersion(),
	})
}

// notFoundHandler handles 404 errors
func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "NOT_FOUND",
			"message": "The requested resource was not found",
			"path":    c.Path(),
		},
	})
}

// getVersion returns the build version
func getVersion() string {
	// This would typically be set during build
	return "dev"
}
