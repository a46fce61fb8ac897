package queue

import (
	"fmt"
	"strings"

	"github.com/finsightapp/finsight/internal/config"
	"github.com/finsightapp/finsight/internal/utils"
)

// NewQueue creates a new Queue instance based on configuration.
// NATS is used when the type is empty.
func NewQueue(cfg config.QueueConfig) (Queue, error) {
	queueType := utils.QueueType(strings.ToLower(cfg.Type))
	if queueType == "" {
		queueType = utils.QueueTypeNATS
	}

	var (
		q   Queue
		err error
	)
	switch queueType {
	case utils.QueueTypeNATS:
		q, err = newNATSQueue(NATSConfig{
			URL:        cfg.URL,
			Username:   cfg.Username,
			Password:   cfg.Password,
			MaxDeliver: cfg.MaxDeliver,
			AckWait:    cfg.AckWait,
		})

	case utils.QueueTypeRedis:
		q, err = newRedisQueue(RedisConfig{
			URL:        cfg.URL,
			Password:   cfg.Password,
			DB:         cfg.RedisDB,
			Stream:     cfg.RedisStream,
			Group:      cfg.RedisGroup,
			Consumer:   cfg.RedisConsumer,
			MaxDeliver: cfg.MaxDeliver,
		})

	case utils.QueueTypeKafka:
		q, err = newKafkaQueue(KafkaConfig{
			Brokers:    cfg.KafkaBrokers,
			GroupID:    cfg.KafkaGroupID,
			MaxDeliver: cfg.MaxDeliver,
		})

	case utils.QueueTypeMemory:
		q = newMemoryQueue(cfg.MaxDeliver)

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: nats, redis, kafka, memory)", queueType)
	}

	// Avoid handing back a typed nil inside the interface
	if err != nil {
		return nil, err
	}
	return q, nil
}

// NewPublisher creates a Publisher for callers that only submit jobs
func NewPublisher(cfg config.QueueConfig) (Publisher, error) {
	return NewQueue(cfg)
}

// NewSubscriber creates a Subscriber for callers that only consume jobs
func NewSubscriber(cfg config.QueueConfig) (Subscriber, error) {
	return NewQueue(cfg)
}
