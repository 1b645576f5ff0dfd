package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/petshop-commerce/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the forwarder uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope is the JSON value written for every forwarded event.
type Envelope struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Key       string      `json:"key,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data"`
}

// KafkaForwarder copies bus events onto a Kafka topic.
type KafkaForwarder struct {
	writer MessageWriter
	logger *slog.Logger
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
}

func NewKafkaForwarder(writer MessageWriter, logger *slog.Logger) *KafkaForwarder {
	return &KafkaForwarder{
		writer: writer,
		logger: logger,
	}
}

// Forward is an event bus Handler.
func (f *KafkaForwarder) Forward(ctx context.Context, event Event) error {
	env := Envelope{
		ID:        event.EventID(),
		Type:      event.EventType(),
		Timestamp: event.OccurredAt(),
		TraceID:   logger.TraceID(ctx),
		Data:      event.Payload(),
	}
	if keyed, ok := event.(Keyed); ok {
		env.Key = keyed.PartitionKey()
	}

	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", env.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(env.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.Type)},
			{Key: "event_id", Value: []byte(env.ID)},
		},
	}
	if env.TraceID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "trace_id", Value: []byte(env.TraceID)})
	}

	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		f.logger.Error("failed to forward event to kafka",
			"error", err,
			"event_id", env.ID,
			"event_type", env.Type,
			"key", env.Key)
		return err
	}

	f.logger.Debug("event forwarded to kafka", "event_id", env.ID, "event_type", env.Type, "key", env.Key)
	return nil
}

// Register subscribes the forwarder to every storefront event type.
func (f *KafkaForwarder) Register(bus *EventBus) {
	bus.SubscribeAll(f.Forward, AllTypes...)
	f.logger.Info("kafka forwarder registered", "event_types", AllTypes)
}

func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}
