package events

import (
	"context"
	"encoding/json"
	"log"
)

// LogPublisher prints events instead of sending them. Used when no broker
// is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	log.Printf("[MOCK EVENT] key:%s %s", key, b)
	return nil
}

func (LogPublisher) Close() error { return nil }
