// Package publish forwards stored readings to external consumers.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"smart-orchard-backend/config"
	"smart-orchard-backend/internal/model"
)

const messageKey = "orchard"

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes every reading to a topic as JSON.
type KafkaSink struct {
	w MessageWriter
}

// NewKafkaWriter builds a synchronous writer for the configured topic.
func NewKafkaWriter(cfg config.KafkaConfig) (*kafka.Writer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 50 * time.Millisecond,
	}, nil
}

// NewKafkaSink creates a sink writing through w.
func NewKafkaSink(w MessageWriter) *KafkaSink {
	return &KafkaSink{w: w}
}

// Name identifies the sink in metrics and logs.
func (s *KafkaSink) Name() string { return "kafka" }

// Publish writes reading keyed by orchard and stamped with its timestamp.
func (s *KafkaSink) Publish(ctx context.Context, reading model.SensorReading) error {
	b, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("kafka: marshal reading %d: %w", reading.ID, err)
	}
	if err := s.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(messageKey),
		Value: b,
		Time:  reading.Timestamp,
	}); err != nil {
		return fmt.Errorf("kafka: write reading %d: %w", reading.ID, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (s *KafkaSink) Close() error {
	return s.w.Close()
}
