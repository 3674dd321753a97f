package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitPublisher struct {
	conn  *amqp.Connection
	chn   *amqp.Channel
	queue string
}

// NewRabbitPublisher dials url and declares a durable queue.
func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	chn, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if _, err := chn.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = chn.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &RabbitPublisher{conn: conn, chn: chn, queue: queue}, nil
}

func (r *RabbitPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.chn.PublishWithContext(ctx, "", r.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Body:         body,
	})
}

func (r *RabbitPublisher) Close() error {
	if err := r.chn.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}
