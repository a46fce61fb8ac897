package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	natsStreamPrefix  = "FINSIGHT-"
	natsConsumerGroup = "forecasters-"
	natsMaxAckPending = 100
)

// NATSConfig represents NATS JetStream configuration
type NATSConfig struct {
	URL        string
	Username   string
	Password   string
	MaxDeliver int           // Delivery attempts per message (default: 3)
	AckWait    time.Duration // Redelivery delay for unacknowledged messages (default: 30s)
}

// NATSQueue implements Queue using NATS JetStream. Every subject is backed by
// its own file stream; subscribers join a durable queue group so jobs are
// spread across workers and survive restarts.
type NATSQueue struct {
	conn          *nats.Conn
	js            nats.JetStreamContext
	config        NATSConfig
	streams       map[string]bool
	subscriptions map[string]*natsSubscription
	mu            sync.Mutex
}

type natsSubscription struct {
	sub    *nats.Subscription
	cancel context.CancelFunc
}

// newNATSQueue connects to the server and opens a JetStream context
func newNATSQueue(cfg NATSConfig) (*NATSQueue, error) {
	var opts []nats.Option
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	q, err := newNATSQueueWithConn(conn, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return q, nil
}

// newNATSQueueWithConn wraps an existing connection
func newNATSQueueWithConn(conn *nats.Conn, cfg NATSConfig) (*NATSQueue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if cfg.MaxDeliver <= 0 {
		cfg.MaxDeliver = DefaultMaxDeliver
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = 30 * time.Second
	}

	return &NATSQueue{
		conn:          conn,
		js:            js,
		config:        cfg,
		streams:       make(map[string]bool),
		subscriptions: make(map[string]*natsSubscription),
	}, nil
}

// ensureStream creates the stream backing subject if it does not exist yet
func (q *NATSQueue) ensureStream(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.streams[subject] {
		return nil
	}

	name := natsStreamPrefix + sanitizeName(subject)
	if _, err := q.js.StreamInfo(name); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			return fmt.Errorf("failed to look up stream %s: %w", name, err)
		}
		_, err = q.js.AddStream(&nats.StreamConfig{
			Name:     name,
			Subjects: []string{subject},
			Storage:  nats.FileStorage,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream for subject %s: %w", subject, err)
		}
	}

	q.streams[subject] = true
	return nil
}

// Publish publishes a message and waits for the stream acknowledgement
func (q *NATSQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := q.ensureStream(subject); err != nil {
		return err
	}
	if _, err := q.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// PublishBatch queues every message asynchronously and waits for the
// acknowledgements until ctx is done.
func (q *NATSQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	futures := make([]nats.PubAckFuture, 0, len(messages))
	for _, msg := range messages {
		if err := q.ensureStream(msg.Subject); err != nil {
			continue
		}
		future, err := q.js.PublishAsync(msg.Subject, msg.Data)
		if err != nil {
			continue
		}
		futures = append(futures, future)
	}

	select {
	case <-q.js.PublishAsyncComplete():
	case <-ctx.Done():
		return 0, fmt.Errorf("timeout waiting for batch publish: %w", ctx.Err())
	}

	accepted := 0
	for _, future := range futures {
		select {
		case <-future.Ok():
			accepted++
		case <-future.Err():
		}
	}
	return accepted, nil
}

// Subscribe joins the durable queue group for subject. Failed messages are
// redelivered after AckWait up to MaxDeliver times; permanent failures are
// terminated immediately.
func (q *NATSQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	_, exists := q.subscriptions[subject]
	q.mu.Unlock()
	if exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	if err := q.ensureStream(subject); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	group := natsConsumerGroup + sanitizeName(subject)

	sub, err := q.js.QueueSubscribe(subject, group, func(msg *nats.Msg) {
		err := handler(ctx, msg.Data)
		switch {
		case err == nil:
			_ = msg.Ack()
		case IsPermanent(err):
			_ = msg.Term()
		default:
			_ = msg.Nak()
		}
	},
		nats.Durable(group),
		nats.ManualAck(),
		nats.MaxAckPending(natsMaxAckPending),
		nats.AckWait(q.config.AckWait),
		nats.MaxDeliver(q.config.MaxDeliver),
		nats.DeliverAll(),
	)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	q.mu.Lock()
	q.subscriptions[subject] = &natsSubscription{sub: sub, cancel: cancel}
	q.mu.Unlock()
	return nil
}

// Unsubscribe drains in-flight messages and leaves the queue group for subject
func (q *NATSQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	s, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	s.cancel()
	delete(q.subscriptions, subject)
	if err := s.sub.Drain(); err != nil {
		return fmt.Errorf("failed to unsubscribe from subject %s: %w", subject, err)
	}
	return nil
}

// Close drains all subscriptions and closes the connection
func (q *NATSQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, s := range q.subscriptions {
		s.cancel()
		_ = s.sub.Drain()
		delete(q.subscriptions, subject)
	}

	q.conn.Close()
	return nil
}

// sanitizeName maps a subject to a valid stream or consumer name.
// Names may only contain A-Z, a-z, 0-9, dash and underscore.
func sanitizeName(subject string) string {
	result := make([]byte, len(subject))
	for i := 0; i < len(subject); i++ {
		c := subject[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			result[i] = c
		} else {
			result[i] = '_'
		}
	}
	return string(result)
}
