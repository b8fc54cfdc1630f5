// Package kafka mirrors stored result cells onto a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/khanhnv2901/assetwatch/internal/sink"
)

// messageWriter is the subset of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes cell events as JSON messages.
type Producer struct {
	writer messageWriter
}

var _ sink.Mirror = (*Producer)(nil)

const batchTimeout = 10 * time.Millisecond

// NewProducer creates a producer writing to topic on brokers.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},

			// Events are written one at a time; do not hold them for a batch.
			BatchSize:    1,
			BatchTimeout: batchTimeout,
		},
	}, nil
}

// Publish sends event keyed by its page and cell address.
func (p *Producer) Publish(ctx context.Context, event sink.CellEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cell event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(messageKey(event)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "run_id", Value: []byte(event.RunID)},
		},
	})
}

// Close flushes pending messages and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

func messageKey(event sink.CellEvent) string {
	return event.Page + ":" + strconv.Itoa(event.Row) + ":" + strconv.Itoa(event.Col)
}
