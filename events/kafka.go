package events

import (
	"context"
	"encoding/json"
	"log"

	skafka "github.com/segmentio/kafka-go"
)

// Writer is the subset of kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer Writer
}

func NewKafkaPublisher(brokerURL, topic string) *KafkaPublisher {
	w := &skafka.Writer{
		Addr:                   skafka.TCP(brokerURL),
		Topic:                  topic,
		Balancer:               &skafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func NewKafkaPublisherWithWriter(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish writes value as JSON. Keying by user keeps one user's events ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		log.Printf("kafka: failed to marshal event: %v", err)
		return err
	}
	if err := p.writer.WriteMessages(ctx, skafka.Message{Key: []byte(key), Value: b}); err != nil {
		log.Printf("kafka: write error: %v", err)
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
