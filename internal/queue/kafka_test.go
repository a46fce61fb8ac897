package queue

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

// kafkaBrokers returns brokers from KAFKA_BROKERS or skips the test
func kafkaBrokers(t *testing.T) []string {
	t.Helper()
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS not set, skipping Kafka integration test")
	}
	return strings.Split(brokers, ",")
}

func TestNewKafkaQueue_RequiresBrokers(t *testing.T) {
	if _, err := newKafkaQueue(KafkaConfig{}); err == nil {
		t.Fatal("Expected error without brokers")
	}
}

func TestNewKafkaQueue_Defaults(t *testing.T) {
	q, err := newKafkaQueue(KafkaConfig{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("newKafkaQueue failed: %v", err)
	}
	defer func() { _ = q.Close() }()

	cfg := q.config
	if cfg.GroupID != "finsight-forecasters" {
		t.Errorf("GroupID = %s", cfg.GroupID)
	}
	if cfg.BatchSize != 100 || cfg.BatchTimeout != 10*time.Millisecond {
		t.Errorf("Unexpected batch defaults %d/%v", cfg.BatchSize, cfg.BatchTimeout)
	}
	if cfg.MaxDeliver != DefaultMaxDeliver || cfg.CommitRetries != 3 {
		t.Errorf("Unexpected delivery defaults %d/%d", cfg.MaxDeliver, cfg.CommitRetries)
	}
}

func TestKafkaQueue_WriterReused(t *testing.T) {
	q, err := newKafkaQueue(KafkaConfig{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("newKafkaQueue failed: %v", err)
	}
	defer func() { _ = q.Close() }()

	w1 := q.writer("jobs")
	w2 := q.writer("jobs")
	if w1 != w2 {
		t.Error("Expected the writer to be reused per topic")
	}
	if w1.Topic != "jobs" {
		t.Errorf("Writer topic = %s", w1.Topic)
	}
	if n, err := q.PublishBatch(context.Background(), nil); n != 0 || err != nil {
		t.Errorf("Empty batch = %d, %v", n, err)
	}
	if err := q.Unsubscribe("jobs"); err == nil {
		t.Error("Expected error unsubscribing unknown topic")
	}
}

func TestKafkaQueue_PublishSubscribe(t *testing.T) {
	brokers := kafkaBrokers(t)
	topic := fmt.Sprintf("finsight-test-%d", time.Now().UnixNano())

	q, err := newKafkaQueue(KafkaConfig{Brokers: brokers, GroupID: topic})
	if err != nil {
		t.Fatalf("newKafkaQueue failed: %v", err)
	}
	defer func() { _ = q.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := q.Publish(ctx, topic, []byte("job")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	rec := newRecorder()
	if err := q.Subscribe(topic, rec.handler(nil)); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if !waitFor(t, 20*time.Second, func() bool { return rec.count() == 1 }) {
		t.Fatal("Expected the message to be consumed")
	}
}
