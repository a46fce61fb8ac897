package queue

import (
	"context"
	"fmt"
	"sync"
)

const memoryQueueCapacity = 10000

// MemoryQueue implements Queue over buffered channels. It is used by tests
// and by single-process deployments that run the API and a worker together.
type MemoryQueue struct {
	maxDeliver    int
	channels      map[string]chan []byte
	subscriptions map[string]context.CancelFunc
	wg            sync.WaitGroup
	mu            sync.Mutex
}

// newMemoryQueue creates a new in-memory queue. maxDeliver <= 0 means
// DefaultMaxDeliver.
func newMemoryQueue(maxDeliver int) *MemoryQueue {
	if maxDeliver <= 0 {
		maxDeliver = DefaultMaxDeliver
	}
	return &MemoryQueue{
		maxDeliver:    maxDeliver,
		channels:      make(map[string]chan []byte),
		subscriptions: make(map[string]context.CancelFunc),
	}
}

// channel returns the channel for subject, creating it on first use.
// Callers must hold q.mu.
func (q *MemoryQueue) channel(subject string) chan []byte {
	ch, exists := q.channels[subject]
	if !exists {
		ch = make(chan []byte, memoryQueueCapacity)
		q.channels[subject] = ch
	}
	return ch
}

// Publish copies data onto the subject's channel. It fails instead of
// blocking when the channel is full.
func (q *MemoryQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	ch := q.channel(subject)

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	select {
	case ch <- dataCopy:
		return nil
	default:
		return fmt.Errorf("channel full for subject: %s", subject)
	}
}

// PublishBatch publishes messages one by one
func (q *MemoryQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	accepted := 0
	for _, msg := range messages {
		if err := q.Publish(ctx, msg.Subject, msg.Data); err != nil {
			continue
		}
		accepted++
	}
	return accepted, nil
}

// Subscribe starts a consumer goroutine for subject
func (q *MemoryQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	ch := q.channel(subject)
	ctx, cancel := context.WithCancel(context.Background())
	q.subscriptions[subject] = cancel

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				for attempt := 1; ; attempt++ {
					err := handler(ctx, data)
					if !shouldRetry(err, attempt, q.maxDeliver) || ctx.Err() != nil {
						break
					}
				}
			}
		}
	}()
	return nil
}

// Unsubscribe stops the consumer for subject
func (q *MemoryQueue) Unsubscribe(subject string) error {
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

// Close stops all consumers and drops undelivered messages
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	for subject, cancel := range q.subscriptions {
		cancel()
		delete(q.subscriptions, subject)
	}
	q.mu.Unlock()

	q.wg.Wait()

	q.mu.Lock()
	defer q.mu.Unlock()
	for subject := range q.channels {
		delete(q.channels, subject)
	}
	return nil
}

// PendingCount returns the number of undelivered messages for subject
func (q *MemoryQueue) PendingCount(subject string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ch, exists := q.channels[subject]; exists {
		return len(ch)
	}
	return 0
}
