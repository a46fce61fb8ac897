package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Engine    string `json:"engine"`
	JobsReady bool   `json:"jobs_ready"` // A job queue is attached
}

// JobAcceptedResponse is returned when a job was queued
type JobAcceptedResponse struct {
	JobID string `json:"job_id"`
	Kind  string `json:"kind"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
