package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/opdpulse/opdpulse/internal/config"
	"github.com/opdpulse/opdpulse/internal/handlers"
	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/middleware"
	"github.com/opdpulse/opdpulse/internal/services"
	"github.com/opdpulse/opdpulse/internal/utils"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, queueService *services.QueueService,
	predictionService *services.PredictionService, cfg config.Config,
) *handlers.Handler {
	h := handlers.New(logger, queueService, predictionService)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API key authentication middleware
	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", authMiddleware)

	// Queue Ingestion Routes
	v1.Post("/queue/update", h.UpdateQueue)
	v1.Post("/queue/upload", h.UploadCSV)

	// Prediction Routes
	v1.Get("/prediction/wait-time", h.WaitTime)

	// Analytics Routes
	v1.Get("/analytics/forecast", h.Forecast)
	v1.Get("/analytics/heatmap", h.Heatmap)

	// Department Board Routes
	v1.Get("/departments", h.Departments)

	// Alert Routes
	v1.Get("/alerts", h.ListAlerts)
	v1.Post("/alerts/:id/resolve", h.ResolveAlert)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, queueService *services.QueueService,
	predictionService *services.PredictionService, cfg config.Config,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "OPDPulse",
		DisableStartupMessage: true,
		ReadTimeout:           utils.RequestReadTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, queueService, predictionService, cfg)

	return app
}
