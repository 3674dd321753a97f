package events

import (
	"fmt"
	"log"
	"strings"
)

type TransportConfig struct {
	Transport   string
	KafkaBroker string
	Topic       string
	RabbitMQURL string
}

// Open returns the publisher selected by cfg.Transport ("log", "kafka",
// "rabbitmq").
func Open(cfg TransportConfig) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case "", "log":
		return LogPublisher{}, nil
	case "kafka":
		if cfg.KafkaBroker == "" {
			return nil, fmt.Errorf("events: KAFKA_BROKER is required for kafka transport")
		}
		log.Printf("events: publishing to kafka %s topic %s", cfg.KafkaBroker, cfg.Topic)
		return NewKafkaPublisher(cfg.KafkaBroker, cfg.Topic), nil
	case "rabbitmq":
		if cfg.RabbitMQURL == "" {
			return nil, fmt.Errorf("events: RABBITMQ_URL is required for rabbitmq transport")
		}
		log.Printf("events: publishing to rabbitmq queue %s", cfg.Topic)
		return NewRabbitPublisher(cfg.RabbitMQURL, cfg.Topic)
	default:
		return nil, fmt.Errorf("events: unknown transport %q", cfg.Transport)
	}
}
