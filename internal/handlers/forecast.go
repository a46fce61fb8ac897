package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/finsightapp/finsight/internal/jobs"
	"github.com/finsightapp/finsight/internal/logging"
	"github.com/finsightapp/finsight/internal/models"
	"github.com/finsightapp/finsight/internal/services"
)

// Forecast handles forecast requests
// POST /v1/forecast
func (h *Handler) Forecast(c *fiber.Ctx) error {
	var req services.ForecastRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	result, err := h.forecastService.Forecast(c.UserContext(), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// ValidateModel handles model validation requests
// POST /v1/forecast/validate
func (h *Handler) ValidateModel(c *fiber.Ctx) error {
	var req services.ValidateRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	result, err := h.forecastService.Validate(c.UserContext(), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// ModelInfo describes the engine, its methods and limitations
// GET /v1/forecast/model
func (h *Handler) ModelInfo(c *fiber.Ctx) error {
	return c.JSON(h.forecastService.ModelMetrics())
}

// Outliers handles IQR outlier detection requests
// POST /v1/forecast/outliers
func (h *Handler) Outliers(c *fiber.Ctx) error {
	var req services.OutlierRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	result, err := h.forecastService.DetectOutliers(c.UserContext(), &req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// SubmitJobRequest is the body of an asynchronous job submission
type SubmitJobRequest struct {
	services.ForecastRequest
	Kind     jobs.Kind         `json:"kind,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SubmitJob queues a forecast or validation job for the workers
// POST /v1/forecast/jobs
func (h *Handler) SubmitJob(c *fiber.Ctx) error {
	if h.submitter == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "JOBS_UNAVAILABLE",
				Message: "No job queue is configured",
				Path:    c.Path(),
			},
		})
	}

	var req SubmitJobRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	kind := req.Kind
	if kind == "" {
		kind = jobs.KindForecast
	}
	if kind != jobs.KindForecast && kind != jobs.KindValidate {
		return h.respondError(c, services.NewServiceErrorWithDetails(
			services.CodeInvalidRequest,
			"Unknown job kind: "+string(kind),
			map[string]interface{}{"available_kinds": []jobs.Kind{jobs.KindForecast, jobs.KindValidate}},
		))
	}

	id, err := h.submitter.Submit(c.UserContext(), kind, req.ForecastRequest, req.Metadata)
	if err != nil {
		h.logger.Error("Failed to submit forecast job",
			"error", err,
			"request_id", logging.RequestID(c.UserContext()))
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "QUEUE_UNAVAILABLE",
				Message: "Failed to queue job",
				Path:    c.Path(),
				Details: map[string]interface{}{"error": err.Error()},
			},
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.JobAcceptedResponse{
		JobID: id,
		Kind:  string(kind),
	})
}
