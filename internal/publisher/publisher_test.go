package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/swordshop/internal/checkout"
	"github.com/fjod/swordshop/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	_ checkout.CompletionListener = (*KafkaPublisher)(nil)
	_ checkout.CompletionListener = (*LogListener)(nil)
	_ MessageWriter               = (*kafka.Writer)(nil)
)

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func sampleOrder() domain.CompletedOrder {
	return domain.CompletedOrder{
		OrderReference: "SWORD-4F2A9C01B7DE",
		Summary:        domain.OrderSummary{Subtotal: 125000, Shipping: 2000, Tax: 6250, Surcharge: 500, Total: 133750},
		PaymentMethod:  domain.PaymentCashOnDelivery,
		ShippingMethod: domain.ShippingStandard,
		Items: []domain.LineItem{
			{ProductID: 1, Title: "Hand-Forged Damascus Steel Katana", Price: 125000, Quantity: 1, StockCeiling: 5},
		},
		Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_WritesEvent(t *testing.T) {
	w := &mockWriter{}
	p := NewKafkaPublisher(w, zap.NewNop())

	p.OnCompleted(context.Background(), sampleOrder())

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "SWORD-4F2A9C01B7DE", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, EventType, string(msg.Headers[0].Value))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "SWORD-4F2A9C01B7DE", payload["order_reference"])
	assert.Equal(t, "cod", payload["payment_method"])
	assert.Equal(t, "standard", payload["shipping_method"])
	assert.Equal(t, float64(133750), payload["summary"].(map[string]interface{})["total"])
	assert.Equal(t, "2024-05-01T10:00:00Z", payload["timestamp"])
	assert.Len(t, payload["items"], 1)
}

func TestKafkaPublisher_FailureIsLoggedNotPropagated(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w := &mockWriter{err: errors.New("leader not available")}
	p := NewKafkaPublisher(w, zap.New(core))

	assert.NotPanics(t, func() { p.OnCompleted(context.Background(), sampleOrder()) })

	entries := logs.FilterMessage("failed to publish completed order").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "SWORD-4F2A9C01B7DE", entries[0].ContextMap()["order_reference"])
}

func TestKafkaPublisher_PublishReturnsError(t *testing.T) {
	w := &mockWriter{err: errors.New("broken pipe")}
	p := NewKafkaPublisher(w, zap.NewNop())

	err := p.Publish(context.Background(), sampleOrder())
	require.ErrorContains(t, err, "broken pipe")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &mockWriter{}
	require.NoError(t, NewKafkaPublisher(w, zap.NewNop()).Close())
	assert.True(t, w.closed)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter("", "localhost:9092")
	defer w.Close()

	assert.Equal(t, DefaultTopic, w.Topic)
	assert.True(t, w.AllowAutoTopicCreation)
}

func TestLogListener(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLogListener(zap.New(core))

	l.OnCompleted(context.Background(), sampleOrder())

	entries := logs.FilterMessage("order receipt").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "PKR 133,750", fields["total"])
	assert.Equal(t, "PKR 500", fields["surcharge"])
	assert.Equal(t, int64(1), fields["items"])
}
