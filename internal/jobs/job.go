// Package jobs runs forecasts asynchronously over the message queue.
// Producers publish a ForecastJob on the request subject; workers run it
// through the forecast service and publish a JobResult on the result subject.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/finsightapp/finsight/internal/compression"
	"github.com/finsightapp/finsight/internal/services"
)

// Kind selects the operation a job runs
type Kind string

const (
	KindForecast Kind = "forecast"
	KindValidate Kind = "validate"
)

// Status is the outcome of a job
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ForecastJob is the message published on the request subject
type ForecastJob struct {
	ID          string                   `json:"id"`
	Kind        Kind                     `json:"kind"`
	SubmittedAt time.Time                `json:"submitted_at"`
	Request     services.ForecastRequest `json:"request"`
	Metadata    map[string]string        `json:"metadata,omitempty"`
}

// JobResult is the message published on the result subject
type JobResult struct {
	ID          string                     `json:"id"`
	Kind        Kind                       `json:"kind"`
	Status      Status                     `json:"status"`
	WorkerID    string                     `json:"worker_id"`
	CompletedAt time.Time                  `json:"completed_at"`
	DurationMs  int64                      `json:"duration_ms"`
	Forecast    *services.ForecastResponse `json:"forecast,omitempty"`
	Validation  *services.ValidateResponse `json:"validation,omitempty"`
	Error       *services.ServiceError     `json:"error,omitempty"`
	Metadata    map[string]string          `json:"metadata,omitempty"`
}

// Codec serializes jobs and results as JSON inside a compression frame
type Codec struct {
	Algorithm compression.Algorithm
}

// NewCodec creates a codec for the named compression algorithm
func NewCodec(name string) (Codec, error) {
	algo, err := compression.ParseAlgorithm(name)
	if err != nil {
		return Codec{}, err
	}
	return Codec{Algorithm: algo}, nil
}

func (c Codec) encode(v interface{}) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return compression.Encode(c.Algorithm, body)
}

func (c Codec) decode(data []byte, v interface{}) error {
	body, err := compression.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decompress payload: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}

// EncodeJob serializes a job
func (c Codec) EncodeJob(job *ForecastJob) ([]byte, error) {
	return c.encode(job)
}

// DecodeJob parses a job and checks its identity and kind
func (c Codec) DecodeJob(data []byte) (*ForecastJob, error) {
	var job ForecastJob
	if err := c.decode(data, &job); err != nil {
		return nil, err
	}
	if job.ID == "" {
		return nil, fmt.Errorf("job without id")
	}
	switch job.Kind {
	case "":
		job.Kind = KindForecast
	case KindForecast, KindValidate:
	default:
		return nil, fmt.Errorf("job %s: unknown kind %q", job.ID, job.Kind)
	}
	return &job, nil
}

// EncodeResult serializes a result
func (c Codec) EncodeResult(result *JobResult) ([]byte, error) {
	return c.encode(result)
}

// DecodeResult parses a result
func (c Codec) DecodeResult(data []byte) (*JobResult, error) {
	var result JobResult
	if err := c.decode(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
