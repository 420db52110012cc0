// Package kafka carries background tasks between the web process and the
// worker loop. Tasks are JSON records on a single topic, keyed by task name.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Task is one unit of background work. Payload is task-specific and may be
// empty.
type Task struct {
	Name       string          `json:"name"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Producer enqueues tasks onto the configured topic.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer connects a producing client to the brokers.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{client: client, topic: topic}, nil
}

// Enqueue publishes a task and waits for broker acknowledgement. Callers that
// want fire-and-forget semantics run it in a goroutine and log the error.
func (p *Producer) Enqueue(ctx context.Context, task Task) error {
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now().UTC()
	}
	value, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task %q: %w", task.Name, err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(task.Name),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce task %q: %w", task.Name, err)
	}
	return nil
}

// Close flushes outstanding records and releases the client.
func (p *Producer) Close() {
	p.client.Close()
}
