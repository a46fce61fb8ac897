package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/finsightapp/finsight/internal/logging"
	"github.com/finsightapp/finsight/internal/models"
)

// statusCodes names the statuses fiber itself produces
var statusCodes = map[int]string{
	fiber.StatusBadRequest:            "BAD_REQUEST",
	fiber.StatusUnauthorized:          "UNAUTHORIZED",
	fiber.StatusForbidden:             "FORBIDDEN",
	fiber.StatusNotFound:              "NOT_FOUND",
	fiber.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	fiber.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	fiber.StatusUnsupportedMediaType:  "UNSUPPORTED_MEDIA_TYPE",
	fiber.StatusTooManyRequests:       "RATE_LIMITED",
	fiber.StatusServiceUnavailable:    "SERVICE_UNAVAILABLE",
}

// errorCode returns the response code for an HTTP status
func errorCode(status int) string {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	if status >= fiber.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return "ERROR"
}

// ErrorHandler returns the fiber error handler. Errors that are not
// *fiber.Error answer 500 without leaking their message.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}

		fields := []interface{}{
			"path", c.Path(),
			"method", c.Method(),
			"status", status,
			"request_id", logging.RequestID(c.UserContext()),
			"error", err,
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("Request error", fields...)
		} else {
			logger.Warn("Request rejected", fields...)
		}

		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    errorCode(status),
				Message: message,
				Path:    c.Path(),
			},
		})
	}
}
