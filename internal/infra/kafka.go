package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rosterdesk/platform/internal/domain"
)

// KafkaProducer publishes domain events to one topic, keyed by organization.
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
	logger *slog.Logger
}

// NewKafkaProducer creates a producer for topic on the comma-separated brokers.
func NewKafkaProducer(brokers, topic string, logger *slog.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)
	return &KafkaProducer{writer: w, topic: topic, logger: logger}
}

// Publish writes the events as one batch. Events sharing a partition key
// land on the same partition in order.
func (p *KafkaProducer) Publish(ctx context.Context, events ...domain.EventEnvelope) error {
	if len(events) == 0 {
		return nil
	}
	msgs, err := encodeEvents(p.topic, events)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close shuts down the Kafka writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

func encodeEvents(topic string, events []domain.EventEnvelope) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode event %s: %w", e.EventID, err)
		}
		msgs = append(msgs, kafka.Message{
			Topic: topic,
			Key:   []byte(e.PartitionKey),
			Value: value,
			Headers: []kafka.Header{
				{Key: "event-type", Value: []byte(e.EventName)},
			},
		})
	}
	return msgs, nil
}

// EventHandler processes one decoded event.
type EventHandler func(ctx context.Context, e domain.EventEnvelope) error

// KafkaConsumer reads domain events from one topic within a consumer group.
type KafkaConsumer struct {
	reader *kafka.Reader
	logger *slog.Logger
}

// NewKafkaConsumer creates a Kafka consumer for the given topic and group.
func NewKafkaConsumer(brokers, topic, groupID string, logger *slog.Logger) *KafkaConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(brokers, ","),
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &KafkaConsumer{reader: r, logger: logger}
}

// Run feeds every message to handle until ctx is cancelled. Offsets are
// committed after handling, so delivery is at least once. Messages that
// cannot be decoded are logged and skipped; handler failures are logged and
// the offset still advances so one bad event cannot wedge the partition.
func (c *KafkaConsumer) Run(ctx context.Context, handle EventHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka fetch: %w", err)
		}

		var e domain.EventEnvelope
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			c.logger.Error("skip undecodable event", "error", err, "partition", msg.Partition, "offset", msg.Offset)
		} else if err := handle(ctx, e); err != nil {
			c.logger.Error("handle event", "error", err, "event_id", e.EventID, "event", e.EventName)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka commit: %w", err)
		}
	}
}

// Close shuts down the Kafka reader.
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
