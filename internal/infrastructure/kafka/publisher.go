package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"mfgtrack/internal/config"
)

type Envelope struct {
	EventID    string          `json:"eventId"`
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes order events to a single topic. Messages with the same key
// land on the same partition, so events for one order stay ordered.
type Publisher struct {
	writer messageWriter
	logger *zap.Logger
	now    func() time.Time
}

// flushInterval bounds how long a single event waits in the writer's batch.
// kafka-go defaults to one second, which every publishing request would pay.
const flushInterval = 5 * time.Millisecond

func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) *Publisher {
	return newPublisher(newWriter(cfg), logger)
}

func newWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           cfg.WriteTimeout,
		BatchSize:              1,
		BatchTimeout:           flushInterval,
		AllowAutoTopicCreation: true,
	}
}

func newPublisher(w messageWriter, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: w,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", eventType, err)
	}

	env := Envelope{
		EventID:    uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: p.now(),
		Payload:    body,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding %s envelope: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing %s event: %w", eventType, err)
	}

	p.logger.Debug("event published", zap.String("type", eventType), zap.String("key", key), zap.String("eventId", env.EventID))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, string, interface{}) error { return nil }

func (NoopPublisher) Close() error { return nil }
