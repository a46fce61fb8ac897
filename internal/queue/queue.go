// Package queue carries forecast jobs and their results between producers
// (HTTP API, CLI) and forecast workers. Transports: NATS JetStream, Redis
// Streams, Kafka and an in-process channel queue.
package queue

import (
	"context"
	"errors"
	"fmt"
)

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes a message to a subject/topic
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishBatch publishes multiple messages and returns how many were accepted
	PublishBatch(ctx context.Context, messages []BatchMessage) (int, error)

	// Close closes the connection
	Close() error
}

// BatchMessage represents a message for batch publishing
type BatchMessage struct {
	Subject string
	Data    []byte
}

// Subscriber subscribes to messages from a queue
type Subscriber interface {
	// Subscribe subscribes to a subject/topic with a handler. Subscribers on
	// the same subject share the work: each message goes to one of them.
	Subscribe(subject string, handler MessageHandler) error

	// Unsubscribe unsubscribes from a subject/topic
	Unsubscribe(subject string) error

	// Close closes the connection
	Close() error
}

// MessageHandler handles incoming messages. ctx is cancelled when the
// subscription ends. A returned error asks for redelivery unless it is
// marked with Permanent.
type MessageHandler func(ctx context.Context, data []byte) error

// Queue combines Publisher and Subscriber interfaces
type Queue interface {
	Publisher
	Subscriber
}

// ErrPermanent marks a handler failure that redelivery cannot fix, such as
// a payload that does not decode.
var ErrPermanent = errors.New("permanent failure")

// Permanent wraps err so the transport acknowledges the message instead of
// redelivering it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

// Default delivery settings shared by the transports
const (
	DefaultMaxDeliver = 3
)

// shouldRetry reports whether a message whose handler returned err on the
// given attempt (1-based) should be delivered again.
func shouldRetry(err error, attempt, maxDeliver int) bool {
	if err == nil || IsPermanent(err) {
		return false
	}
	if maxDeliver <= 0 {
		maxDeliver = DefaultMaxDeliver
	}
	return attempt < maxDeliver
}
