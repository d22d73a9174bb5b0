package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mfgtrack/internal/config"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNewWriter_FlushesEachEventPromptly(t *testing.T) {
	w := newWriter(config.KafkaConfig{
		Brokers:      []string{"k1:9092"},
		Topic:        "mfgtrack.orders",
		WriteTimeout: 3 * time.Second,
	})
	defer w.Close()

	assert.Equal(t, "mfgtrack.orders", w.Topic)
	assert.Equal(t, "k1:9092", w.Addr.String())
	assert.Equal(t, 1, w.BatchSize)
	assert.LessOrEqual(t, w.BatchTimeout, 10*time.Millisecond)
	assert.Positive(t, w.BatchTimeout)
	assert.False(t, w.Async)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
	assert.Equal(t, 3*time.Second, w.WriteTimeout)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, zap.NewNop())
	fixed := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	err := p.Publish(context.Background(), "order.created", "EM-20240501-001", map[string]string{"status": "Raw Material Ordered"})
	require.NoError(t, err)

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "EM-20240501-001", string(msg.Key))
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, "order.created", string(msg.Headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "order.created", env.Type)
	assert.Equal(t, fixed, env.OccurredAt)
	assert.NotEmpty(t, env.EventID)
	assert.JSONEq(t, `{"status":"Raw Material Ordered"}`, string(env.Payload))
}

func TestPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unreachable")}
	p := newPublisher(w, zap.NewNop())

	err := p.Publish(context.Background(), "order.payment_recorded", "k", struct{}{})

	assert.ErrorContains(t, err, "broker unreachable")
}

func TestPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, zap.NewNop())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNoopPublisher(t *testing.T) {
	var p NoopPublisher
	assert.NoError(t, p.Publish(context.Background(), "order.created", "k", nil))
	assert.NoError(t, p.Close())
}
