package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	OrderCreated   = "order.created"
	OrderCompleted = "order.completed"
	OrderFailed    = "order.failed"
	ProductSaved   = "product.saved"
	ProductDeleted = "product.deleted"
)

// Envelope is the JSON value written for every event.
type Envelope struct {
	Event      string                 `json:"event"`
	Key        string                 `json:"key"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes lifecycle events to a Kafka topic. A nil *Publisher drops
// events silently, so callers need no feature switch.
type Publisher struct {
	writer messageWriter
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           10 * time.Second,
		},
	}
}

func newPublisherWithWriter(w messageWriter) *Publisher {
	return &Publisher{writer: w}
}

// Publish writes one event keyed by key, so all events of one order or
// product land on the same partition in order.
func (p *Publisher) Publish(ctx context.Context, event, key string, payload map[string]interface{}) error {
	if p == nil || p.writer == nil {
		return nil
	}
	value, err := json.Marshal(Envelope{
		Event:      event,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event)},
		},
	}); err != nil {
		return fmt.Errorf("failed to write event %s: %w", event, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
