package models

import "time"

// Worker statuses
const (
	WorkerStatusActive   = "active"
	WorkerStatusDraining = "draining"
)

// WorkerInfo is the record a forecast worker keeps in etcd while it runs
type WorkerInfo struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"` // host:port of the gRPC health endpoint
	Status    string    `json:"status"`  // active, draining
	Engine    string    `json:"engine"`
	Version   string    `json:"version"` // engine version
	Methods   []string  `json:"methods"`
	Subject   string    `json:"subject"` // request subject the worker consumes
	Processed int64     `json:"processed"`
	Failed    int64     `json:"failed"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
