package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/models"
	"github.com/opdpulse/opdpulse/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger            *logging.Logger
	queueService      *services.QueueService
	predictionService *services.PredictionService
}

// New creates a new handler instance
func New(logger *logging.Logger, queueService *services.QueueService,
	predictionService *services.PredictionService,
) *Handler {
	return &Handler{
		logger:            logger,
		queueService:      queueService,
		predictionService: predictionService,
	}
}

// respondServiceError maps a service error to an HTTP response
func respondServiceError(c *fiber.Ctx, err error, fallbackCode string) error {
	if svcErr, ok := err.(*services.ServiceError); ok {
		status := fiber.StatusInternalServerError
		switch svcErr.Code {
		case services.CodeInvalidRequest, services.CodeInvalidCSV:
			status = fiber.StatusBadRequest
		case services.CodeAlertNotFound:
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    svcErr.Code,
				Message: svcErr.Message,
				Details: svcErr.Details,
			},
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    fallbackCode,
			Message: err.Error(),
		},
	})
}
