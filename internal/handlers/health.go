package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/finsightapp/finsight/internal/analytics/forecast"
	"github.com/finsightapp/finsight/internal/models"
)

// Health handles health check requests
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   forecast.EngineVersion,
		Engine:    forecast.EngineName,
		JobsReady: h.submitter != nil,
	})
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "Route not found",
			Path:    c.Path(),
		},
	})
}
