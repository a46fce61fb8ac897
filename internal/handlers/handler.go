// Package handlers implements the HTTP endpoints of the forecasting API.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/finsightapp/finsight/internal/jobs"
	"github.com/finsightapp/finsight/internal/logging"
	"github.com/finsightapp/finsight/internal/models"
	"github.com/finsightapp/finsight/internal/services"
)

// StatusClientClosedRequest is reported when the caller went away mid-request
const StatusClientClosedRequest = 499

// Handler contains all HTTP handlers
type Handler struct {
	logger          *logging.Logger
	forecastService *services.ForecastService
	submitter       *jobs.Submitter // nil when no queue is configured
}

// New creates a new handler instance. submitter may be nil, in which case
// job submission answers 503.
func New(logger *logging.Logger, forecastService *services.ForecastService, submitter *jobs.Submitter) *Handler {
	return &Handler{
		logger:          logger,
		forecastService: forecastService,
		submitter:       submitter,
	}
}

// errorStatus maps a service error code onto an HTTP status
func errorStatus(code string) int {
	switch code {
	case services.CodeInvalidRequest, services.CodeInvalidMethod,
		services.CodeInvalidOptions, services.CodeSeriesTooLong:
		return fiber.StatusBadRequest
	case services.CodeInsufficientData, services.CodeInvalidValues:
		return fiber.StatusUnprocessableEntity
	case services.CodeTimeout:
		return fiber.StatusGatewayTimeout
	case services.CodeCancelled:
		return StatusClientClosedRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		svcErr = services.FromEngineError(err)
	}
	return c.Status(errorStatus(svcErr.Code)).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Path:    c.Path(),
			Details: svcErr.Details,
		},
	})
}

// parseBody decodes the JSON body into out, answering 400 on failure. The
// returned bool is false when a response has already been written.
func parseBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if len(c.Body()) == 0 {
		return false, c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    services.CodeInvalidRequest,
				Message: "Request body is required",
				Path:    c.Path(),
			},
		})
	}
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_JSON",
				Message: "Failed to parse JSON body",
				Path:    c.Path(),
				Details: map[string]interface{}{"error": err.Error()},
			},
		})
	}
	return true, nil
}
