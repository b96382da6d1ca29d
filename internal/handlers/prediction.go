package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/opdpulse/opdpulse/internal/services"
)

const defaultForecastHours = 12

// WaitTime predicts the current wait for a department
// GET /v1/prediction/wait-time?department=General
func (h *Handler) WaitTime(c *fiber.Ctx) error {
	department := c.Query("department")

	result, err := h.predictionService.WaitTime(c.Context(), department)
	if err != nil {
		return respondServiceError(c, err, services.CodeAnalysisFailure)
	}

	return c.JSON(result)
}

// Forecast produces the hourly wait forecast for a department
// GET /v1/analytics/forecast?department=General&hours=12
func (h *Handler) Forecast(c *fiber.Ctx) error {
	department := c.Query("department", "General")

	hours, err := strconv.Atoi(c.Query("hours", strconv.Itoa(defaultForecastHours)))
	if err != nil || hours <= 0 {
		hours = defaultForecastHours
	}

	result, err := h.predictionService.Forecast(c.Context(), department, hours)
	if err != nil {
		return respondServiceError(c, err, services.CodeAnalysisFailure)
	}

	return c.JSON(result)
}

// Heatmap returns the simulated day-by-hour congestion grid
// GET /v1/analytics/heatmap
func (h *Handler) Heatmap(c *fiber.Ctx) error {
	return c.JSON(h.predictionService.Heatmap(c.Context()))
}

// Departments reports the status board for every tracked department
// GET /v1/departments
func (h *Handler) Departments(c *fiber.Ctx) error {
	result, err := h.predictionService.DepartmentBoard(c.Context())
	if err != nil {
		return respondServiceError(c, err, services.CodeAnalysisFailure)
	}

	return c.JSON(result)
}
