package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// DefaultRequestTimeout bounds a forecast request when no timeout is configured
	DefaultRequestTimeout = 30 * time.Second

	// ShutdownTimeout is the grace period for HTTP, gRPC and worker shutdown
	ShutdownTimeout = 10 * time.Second
)

// gRPC Timeouts
const (
	// GRPCDialTimeout is the timeout for establishing gRPC connections
	GRPCDialTimeout = 10 * time.Second

	// GRPCHealthCheckInterval is how often the worker re-evaluates its health status
	GRPCHealthCheckInterval = 30 * time.Second
)

// =============================================================================
// Job Constants
// =============================================================================

const (
	// JobPublishTimeout bounds publishing a job result
	JobPublishTimeout = 5 * time.Second

	// RegistryOperationTimeout bounds a single etcd registration call
	RegistryOperationTimeout = 5 * time.Second

	// RegistryRetryInterval is the wait before re-registering after a lost lease
	RegistryRetryInterval = 2 * time.Second
)

// =============================================================================
// Queue Type Constants
// =============================================================================

// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream queue (default)
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents in-memory queue (for testing)
	QueueTypeMemory QueueType = "memory"
)
