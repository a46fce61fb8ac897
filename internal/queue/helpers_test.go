package queue

import (
	"context"
	"sync"
	"testing"
	"time"
)

// waitFor polls cond until it holds or timeout elapses
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

// recorder collects delivered payloads
type recorder struct {
	mu       sync.Mutex
	messages []string
	attempts map[string]int
}

func newRecorder() *recorder {
	return &recorder{attempts: make(map[string]int)}
}

// handler returns a MessageHandler that records every attempt and answers
// with fail(data) for that attempt.
func (r *recorder) handler(fail func(data string, attempt int) error) MessageHandler {
	return func(_ context.Context, data []byte) error {
		r.mu.Lock()
		r.attempts[string(data)]++
		attempt := r.attempts[string(data)]
		r.mu.Unlock()

		if fail != nil {
			if err := fail(string(data), attempt); err != nil {
				return err
			}
		}

		r.mu.Lock()
		r.messages = append(r.messages, string(data))
		r.mu.Unlock()
		return nil
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *recorder) attemptsFor(data string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts[data]
}

func (r *recorder) received() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
