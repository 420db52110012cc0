package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HandlerFunc processes one task. Returning an error marks the task failed;
// the record is still committed, so delivery is at-most-once per group.
type HandlerFunc func(ctx context.Context, task Task) error

// Handlers maps task names to their handlers.
type Handlers interface {
	Handler(name string) (HandlerFunc, bool)
}

// Consumer polls the task topic as part of a consumer group and dispatches
// records through a handler registry.
type Consumer struct {
	client   *kgo.Client
	handlers Handlers
	logger   *slog.Logger
}

func NewConsumer(brokers []string, topic, group string, handlers Handlers, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{client: client, handlers: handlers, logger: logger}, nil
}

// Run polls until ctx is cancelled. Unknown task names and handler failures
// are logged and skipped; a poisoned record must never wedge the loop.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.client.Close()

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "task fetch failed",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		fetches.EachRecord(func(record *kgo.Record) {
			c.dispatch(ctx, record)
		})
	}
}

func (c *Consumer) dispatch(ctx context.Context, record *kgo.Record) {
	var task Task
	if err := json.Unmarshal(record.Value, &task); err != nil {
		c.logger.WarnContext(ctx, "task record not decodable, skipping",
			"key", string(record.Key),
			"error", err,
		)
		return
	}

	handler, ok := c.handlers.Handler(task.Name)
	if !ok {
		c.logger.WarnContext(ctx, "no handler for task, skipping", "task", task.Name)
		return
	}

	ctx, span := otel.Tracer("signet/tasks").Start(ctx, "task."+task.Name,
		trace.WithAttributes(attribute.String("task.name", task.Name)))
	defer span.End()

	if err := handler(ctx, task); err != nil {
		c.logger.ErrorContext(ctx, "task failed", "task", task.Name, "error", err)
		return
	}
	c.logger.DebugContext(ctx, "task completed", "task", task.Name)
}
