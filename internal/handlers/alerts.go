package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opdpulse/opdpulse/internal/models"
	"github.com/opdpulse/opdpulse/internal/services"
)

// ListAlerts returns all unresolved alerts, newest first
// GET /v1/alerts
func (h *Handler) ListAlerts(c *fiber.Ctx) error {
	alerts, err := h.queueService.UnresolvedAlerts(c.Context())
	if err != nil {
		return respondServiceError(c, err, services.CodePersistenceFailure)
	}

	return c.JSON(models.AlertListResponse{
		Alerts: alerts,
		Count:  len(alerts),
	})
}

// ResolveAlert marks an alert as resolved
// POST /v1/alerts/:id/resolve
func (h *Handler) ResolveAlert(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    services.CodeInvalidRequest,
				Message: "alert id is required",
			},
		})
	}

	if err := h.queueService.ResolveAlert(c.Context(), id); err != nil {
		return respondServiceError(c, err, services.CodePersistenceFailure)
	}

	return c.JSON(fiber.Map{"message": "Alert resolved", "id": id})
}
