package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/trip-planner-api/internal/domain"
)

// Queue is a durable RabbitMQ work queue for notification batches. The API
// publishes one message per logical fan-out; a worker consumes them and
// performs the per-member delivery loop.
type Queue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	name string
}

// New connects to RabbitMQ and declares the durable batch queue.
func New(url, queueName string) (*Queue, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	return &Queue{conn: conn, ch: ch, name: queueName}, nil
}

// PublishBatch enqueues one fan-out as a persistent JSON message.
func (q *Queue) PublishBatch(ctx context.Context, batch *domain.NotificationBatch) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	return q.ch.PublishWithContext(ctx, "", q.name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Consume delivers queued batches to handler until ctx is cancelled. A handler
// error nacks the message without requeue; malformed payloads are dropped.
func (q *Queue) Consume(ctx context.Context, handler func(context.Context, *domain.NotificationBatch) error) error {
	deliveries, err := q.ch.Consume(q.name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue %s: %w", q.name, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			var batch domain.NotificationBatch
			if err := json.Unmarshal(d.Body, &batch); err != nil {
				slog.Error("dropping malformed batch message", "err", err)
				d.Nack(false, false)
				continue
			}
			if err := handler(ctx, &batch); err != nil {
				slog.Error("batch delivery failed", "trip_id", batch.TripID, "type", batch.Type, "err", err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}

func (q *Queue) Close() {
	if q.ch != nil {
		q.ch.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
}
