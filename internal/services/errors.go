// Package services provides the business logic layer between the transports
// (HTTP handlers, queue worker, CLI) and the forecasting engine.
package services

import (
	"context"
	"errors"

	"github.com/finsightapp/finsight/internal/analytics/forecast"
)

// Error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInvalidMethod     = "INVALID_METHOD"
	CodeInvalidOptions    = "INVALID_OPTIONS"
	CodeInsufficientData  = "INSUFFICIENT_DATA"
	CodeInvalidValues     = "INVALID_VALUES"
	CodeSeriesTooLong     = "SERIES_TOO_LONG"
	CodeTimeout           = "TIMEOUT"
	CodeCancelled         = "CANCELLED"
	CodeComputationFailed = "COMPUTATION_FAILED"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// IsClientError reports whether the error was caused by the request itself
func (e *ServiceError) IsClientError() bool {
	switch e.Code {
	case CodeInvalidRequest, CodeInvalidMethod, CodeInvalidOptions,
		CodeInsufficientData, CodeInvalidValues, CodeSeriesTooLong:
		return true
	default:
		return false
	}
}

// FromEngineError maps an engine error onto a ServiceError. A ServiceError is
// returned unchanged.
func FromEngineError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	code := CodeComputationFailed
	switch {
	case errors.Is(err, forecast.ErrInsufficientData):
		code = CodeInsufficientData
	case errors.Is(err, forecast.ErrInvalidValues):
		code = CodeInvalidValues
	case errors.Is(err, forecast.ErrInvalidOptions):
		code = CodeInvalidOptions
	case errors.Is(err, context.DeadlineExceeded):
		code = CodeTimeout
	case errors.Is(err, context.Canceled):
		code = CodeCancelled
	}
	return &ServiceError{Code: code, Message: err.Error()}
}
