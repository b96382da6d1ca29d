package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opdpulse/opdpulse/internal/models"
	"github.com/opdpulse/opdpulse/internal/services"
)

// UpdateQueue handles a single queue snapshot
// POST /v1/queue/update
func (h *Handler) UpdateQueue(c *fiber.Ctx) error {
	var req models.SnapshotUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_JSON",
				Message: "Failed to parse JSON body",
				Details: map[string]interface{}{"error": err.Error()},
			},
		})
	}

	snap, err := h.queueService.Ingest(c.Context(), &req)
	if err != nil {
		return respondServiceError(c, err, services.CodeAnalysisFailure)
	}

	return c.JSON(models.SnapshotUpdateResponse{
		Message: "Queue snapshot recorded",
		ID:      snap.ID,
	})
}

// UploadCSV handles a bulk CSV import of queue snapshots
// POST /v1/queue/upload
func (h *Handler) UploadCSV(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    services.CodeInvalidRequest,
				Message: "Multipart field 'file' is required",
			},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", "error", err, "filename", fileHeader.Filename)
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    services.CodeInvalidRequest,
				Message: "Failed to read uploaded file",
			},
		})
	}
	defer func() { _ = file.Close() }()

	result, err := h.queueService.ImportCSV(c.Context(), file)
	if err != nil {
		return respondServiceError(c, err, services.CodeInvalidCSV)
	}

	return c.JSON(result)
}
