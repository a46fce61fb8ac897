// Package router assembles the fiber application: middlewares, routes and
// error handling.
package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/finsightapp/finsight/internal/config"
	"github.com/finsightapp/finsight/internal/handlers"
	"github.com/finsightapp/finsight/internal/jobs"
	"github.com/finsightapp/finsight/internal/logging"
	"github.com/finsightapp/finsight/internal/metrics"
	"github.com/finsightapp/finsight/internal/middleware"
	"github.com/finsightapp/finsight/internal/services"
)

// maxBodySize bounds request bodies; a series of MaxSeriesLength values fits well within it
const maxBodySize = 8 << 20

// Dependencies are the services the routes are wired to. Metrics and
// Submitter are optional.
type Dependencies struct {
	ForecastService *services.ForecastService
	Submitter       *jobs.Submitter
	Metrics         *metrics.Metrics
}

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, deps Dependencies, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, deps.ForecastService, deps.Submitter)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check and metrics (no auth required)
	app.Get("/health", h.Health)
	if cfg.Metrics.Enabled && deps.Metrics != nil {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	// API v1 routes (protected by API key)
	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)
	v1 := app.Group("/v1", authMiddleware)

	// Forecast Routes
	v1.Post("/forecast", h.Forecast)
	v1.Post("/forecast/validate", h.ValidateModel)
	v1.Get("/forecast/model", h.ModelInfo)
	v1.Post("/forecast/outliers", h.Outliers)
	v1.Post("/forecast/jobs", h.SubmitJob)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, deps Dependencies, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Finsight Forecast API",
		DisableStartupMessage: true,
		BodyLimit:             maxBodySize,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, deps, cfg)

	return app
}
