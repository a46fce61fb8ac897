package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig represents Redis Streams configuration
type RedisConfig struct {
	URL          string        // Redis URL (e.g., redis://localhost:6379) or host:port
	Password     string        // Optional password
	DB           int           // Database number (default: 0)
	Stream       string        // Stream prefix (default: "finsight")
	Group        string        // Consumer group name (default: "finsight-group")
	Consumer     string        // Consumer name (default: hostname)
	MaxDeliver   int           // Handler attempts per message (default: 3)
	BlockTimeout time.Duration // XREADGROUP block time (default: 1s)
}

// RedisQueue implements Queue using Redis Streams with one consumer group
// shared by all workers.
type RedisQueue struct {
	client        *redis.Client
	config        RedisConfig
	subscriptions map[string]context.CancelFunc
	wg            sync.WaitGroup
	mu            sync.Mutex
}

// newRedisQueue connects to Redis and applies defaults
func newRedisQueue(cfg RedisConfig) (*RedisQueue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if cfg.Stream == "" {
		cfg.Stream = "finsight"
	}
	if cfg.Group == "" {
		cfg.Group = "finsight-group"
	}
	if cfg.Consumer == "" {
		hostname, _ := os.Hostname()
		if hostname == "" {
			hostname = "forecaster-1"
		}
		cfg.Consumer = hostname
	}
	if cfg.MaxDeliver <= 0 {
		cfg.MaxDeliver = DefaultMaxDeliver
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = time.Second
	}

	return &RedisQueue{
		client:        client,
		config:        cfg,
		subscriptions: make(map[string]context.CancelFunc),
	}, nil
}

// streamName converts a subject to a Redis stream key
func (q *RedisQueue) streamName(subject string) string {
	return q.config.Stream + ":" + subject
}

func (q *RedisQueue) xaddArgs(subject string, data []byte) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: q.streamName(subject),
		ID:     "*",
		Values: map[string]interface{}{"data": data},
	}
}

// Publish appends a message to the subject's stream
func (q *RedisQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := q.client.XAdd(ctx, q.xaddArgs(subject, data)).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", q.streamName(subject), err)
	}
	return nil
}

// PublishBatch appends all messages in one pipeline
func (q *RedisQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	pipe := q.client.Pipeline()
	for _, msg := range messages {
		pipe.XAdd(ctx, q.xaddArgs(msg.Subject, msg.Data))
	}

	cmds, err := pipe.Exec(ctx)
	accepted := 0
	for _, cmd := range cmds {
		if cmd.Err() == nil {
			accepted++
		}
	}
	if err != nil && accepted == 0 {
		return 0, fmt.Errorf("failed to execute batch publish: %w", err)
	}
	return accepted, nil
}

// Subscribe creates the consumer group if needed and starts reading
func (q *RedisQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	stream := q.streamName(subject)
	ctx, cancel := context.WithCancel(context.Background())

	err := q.client.XGroupCreateMkStream(ctx, stream, q.config.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		cancel()
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	q.subscriptions[subject] = cancel
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.readStream(ctx, stream, handler)
	}()
	return nil
}

// readStream reads new entries for this consumer until ctx is cancelled.
// Entries whose handler keeps failing stay pending in the group.
func (q *RedisQueue) readStream(ctx context.Context, stream string, handler MessageHandler) {
	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.config.Group,
			Consumer: q.config.Consumer,
			Streams:  []string{stream, ">"},
			Count:    100,
			Block:    q.config.BlockTimeout,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				if q.deliver(ctx, msg, handler) {
					q.client.XAck(ctx, stream, q.config.Group, msg.ID)
				}
			}
		}
	}
}

// deliver runs handler with retries and reports whether the entry should be
// acknowledged.
func (q *RedisQueue) deliver(ctx context.Context, msg redis.XMessage, handler MessageHandler) bool {
	data, ok := msg.Values["data"].(string)
	if !ok {
		return true
	}

	for attempt := 1; ; attempt++ {
		err := handler(ctx, []byte(data))
		if err == nil || IsPermanent(err) {
			return true
		}
		if !shouldRetry(err, attempt, q.config.MaxDeliver) || ctx.Err() != nil {
			return false
		}
	}
}

// Unsubscribe stops reading subject
func (q *RedisQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	cancel()
	delete(q.subscriptions, subject)
	return nil
}

// Close stops all readers and closes the client
func (q *RedisQueue) Close() error {
	q.mu.Lock()
	for subject, cancel := range q.subscriptions {
		cancel()
		delete(q.subscriptions, subject)
	}
	q.mu.Unlock()

	q.wg.Wait()
	return q.client.Close()
}
