package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	RequiredAcks kafkago.RequiredAcks
}

// DefaultProducerConfig returns sensible defaults for a producer.
func DefaultProducerConfig(brokers []string, topic string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		Topic:        topic,
		BatchTimeout: 100 * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
	}
}

// Producer publishes events to a Kafka topic.
type Producer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewProducer creates a Kafka producer for the given topic.
func NewProducer(cfg ProducerConfig, logger *slog.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: cfg.RequiredAcks,
	}
	return &Producer{writer: writer, logger: logger}
}

// Publish writes an event to the topic. The key controls partition affinity;
// events with the same key are delivered in order.
func (p *Producer) Publish(ctx context.Context, key string, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "event-id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message to %s: %w", p.writer.Topic, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("topic", p.writer.Topic),
		slog.String("event_type", event.Type),
		slog.String("event_id", event.ID),
	)
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// PingBrokers checks connectivity to at least one of the given brokers.
// Used by health checks.
func PingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("kafka: no brokers configured")
	}

	var lastErr error
	for _, addr := range brokers {
		conn, err := kafkago.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		// Request the broker list as a lightweight health probe.
		_, err = conn.Brokers()
		_ = conn.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka: no reachable brokers: %w", lastErr)
}
