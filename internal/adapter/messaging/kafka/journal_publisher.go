// Package kafka mirrors posted GL journal entries to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"current-account-ledger/config"
	"current-account-ledger/internal/core/domain"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter builds a synchronous, batching writer for the journal topic.
func NewWriter(cfg config.KafkaConfig, log zerolog.Logger) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.JournalTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Compression:  kafkago.Snappy,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Msgf(msg, args...)
		}),
	}
}

// journalMessage is the wire form of one posted entry.
type journalMessage struct {
	EventType string              `json:"event_type"`
	Entry     domain.JournalEntry `json:"entry"`
	Timestamp time.Time           `json:"timestamp"`
}

// JournalPublisher implements ports.JournalPublisher. Entries of one account
// share a message key, so they land on one partition in posting order.
type JournalPublisher struct {
	writer MessageWriter
	now    func() time.Time
}

// NewJournalPublisher wraps w.
func NewJournalPublisher(w MessageWriter) *JournalPublisher {
	return &JournalPublisher{writer: w, now: time.Now}
}

// Publish writes one message per entry.
func (p *JournalPublisher) Publish(ctx context.Context, entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	now := p.now().UTC()
	msgs := make([]kafkago.Message, 0, len(entries))
	for _, e := range entries {
		value, err := json.Marshal(journalMessage{
			EventType: "journal.posted",
			Entry:     e,
			Timestamp: now,
		})
		if err != nil {
			return fmt.Errorf("marshal journal entry %s: %w", e.ID, err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(e.AccountID.String()),
			Value: value,
			Time:  now,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d journal entries: %w", len(entries), err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *JournalPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when the stream is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, []domain.JournalEntry) error { return nil }
