package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/swordshop/internal/domain"
	"github.com/fjod/swordshop/internal/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	DefaultTopic = "checkout-completed"
	EventType    = "CheckoutCompleted"

	publishTimeout = 5 * time.Second
)

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// KafkaPublisher sends every completed order to Kafka, keyed by order reference.
// The order is already placed when it runs, so failures are only logged.
type KafkaPublisher struct {
	writer MessageWriter
	log    *zap.Logger
}

func NewKafkaPublisher(w MessageWriter, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: log}
}

func (p *KafkaPublisher) OnCompleted(ctx context.Context, order domain.CompletedOrder) {
	if err := p.Publish(ctx, order); err != nil {
		logger.FromCtx(ctx, p.log).Warn("failed to publish completed order",
			zap.String("order_reference", order.OrderReference),
			zap.Error(err))
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, order domain.CompletedOrder) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal completed order: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.OrderReference),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventType)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
