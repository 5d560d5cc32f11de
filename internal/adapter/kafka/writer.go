package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/footfall-etl/internal/config"
	"github.com/couchcryptid/footfall-etl/internal/domain"
	"github.com/couchcryptid/footfall-etl/internal/pipeline"
)

// Writer produces daily records to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishDays publishes one message per day of the snapshot in a single
// WriteMessages call. Days are keyed by date so a topic with compaction keeps
// the latest aggregate per day.
func (w *Writer) PublishDays(ctx context.Context, snap pipeline.Snapshot) error {
	if len(snap.Days) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(snap.Days))
	for i := range snap.Days {
		msg, err := serializeToMessage(snap.Days[i], snap.RunID, snap.GeneratedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish days: %w", err)
	}
	w.logger.Debug("days published", "run_id", snap.RunID, "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DayRecord into a Kafka message.
func serializeToMessage(day domain.DayRecord, runID string, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(day)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize day record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(domain.DateKey(day.Date)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "generated_at", Value: []byte(generatedAt.Format(time.RFC3339))},
		},
	}, nil
}
