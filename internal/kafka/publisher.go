// Package kafka ships committed order events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cadre-be/internal/logger"
	"cadre-be/internal/order"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventVersion = 1

	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)

// Envelope wraps every event payload with routing and tracing metadata.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements order.Publisher. Messages are keyed by order id so
// every event of one order lands on the same partition, in order.
type Publisher struct {
	w        messageWriter
	producer string
	timeout  time.Duration
}

func NewPublisher(brokers []string, topic, producer string) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}, producer)
}

func newPublisher(w messageWriter, producer string) *Publisher {
	return &Publisher{w: w, producer: producer, timeout: 3 * time.Second}
}

func (p *Publisher) Publish(ctx context.Context, e order.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", e.Type, err)
	}

	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     string(e.Type),
		EventVersion:  EventVersion,
		OccurredAt:    e.OccurredAt,
		Producer:      p.producer,
		TraceID:       logger.RequestIDFrom(ctx),
		CorrelationID: e.OrderID,
		Payload:       payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	// The request may finish before the broker acks; keep its values only.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.OrderID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(e.Type)},
			{Key: HeaderEventVersion, Value: []byte(strconv.Itoa(EventVersion))},
		},
	})
	if err != nil {
		return fmt.Errorf("write %s for order %s: %w", e.Type, e.OrderID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
