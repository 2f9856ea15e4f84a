package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// EventPublisher delivers domain events after a write has committed.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// eventKey renders keys like template-created-5.
func eventKey(resource, action string, id int64) string {
	return fmt.Sprintf("%s-%s-%d", resource, action, id)
}

// publishEvent never fails the caller: the write it describes is already committed.
func publishEvent(ctx context.Context, events EventPublisher, resource, action string, id int64, payload any) {
	if events == nil {
		return
	}
	key := eventKey(resource, action, id)
	if err := events.Publish(ctx, key, payload); err != nil {
		logger.Error().Err(err).Msgf("Error publishing event %s", key)
	}
}
