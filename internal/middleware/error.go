package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/models"
)

// ErrorHandler returns the app-level fiber error handler. Errors that reach it
// never went through the service layer, so they carry transport-level codes
// rather than service codes.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal Server Error"

		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
			message = e.Message
		}

		code := "INTERNAL_ERROR"
		switch {
		case status == fiber.StatusNotFound:
			code = "ROUTE_NOT_FOUND"
		case status >= 400 && status < 500:
			code = "BAD_REQUEST"
		}

		if status >= 500 {
			logger.Error("Request failed",
				"path", c.Path(),
				"method", c.Method(),
				"status", status,
				"error", err,
			)
		} else {
			logger.Warn("Request rejected",
				"path", c.Path(),
				"method", c.Method(),
				"status", status,
				"error", err,
			)
		}

		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    code,
				Message: message,
				Path:    c.Path(),
			},
		})
	}
}
