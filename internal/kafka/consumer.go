package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/tcua/price-index-service/internal/models"
)

// BatchRunner executes one pipeline run for a delivered listing batch.
type BatchRunner interface {
	Run(ctx context.Context, date time.Time, source string, listings []models.RawListing) (*models.QualityLogEntry, error)
}

// Consumer receives listing batches from the fetch collaborator and feeds
// them into the pipeline, one run per message.
type Consumer struct {
	reader *kafka.Reader
	runner BatchRunner
	log    zerolog.Logger
}

// NewConsumer creates a new Kafka consumer for listing batches.
func NewConsumer(brokers []string, topic, groupID string, runner BatchRunner, log zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		runner: runner,
		log:    log,
	}
}

// Start consumes messages until the context is cancelled. A failed run is
// logged and consumption continues; the producer side already announced the
// failure for monitoring.
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info().Str("topic", c.reader.Config().Topic).Msg("starting kafka consumer")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("kafka consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // context cancelled, normal shutdown
				}
				c.log.Error().Err(err).Msg("error reading message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.log.Error().Err(err).Msg("error processing message")
			}
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	c.log.Debug().
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Str("key", string(msg.Key)).
		Msg("received message")

	var event models.ListingBatchEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal listing batch: %w", err)
	}

	if event.EventType != "LISTING_BATCH" {
		c.log.Debug().Str("event_type", event.EventType).Msg("ignoring event")
		return nil
	}
	if event.Date.IsZero() {
		return fmt.Errorf("listing batch has no date")
	}

	_, err := c.runner.Run(ctx, event.Date, event.Source, event.Listings)
	if err != nil {
		return fmt.Errorf("run for %s failed: %w", event.Date.Format("2006-01-02"), err)
	}
	return nil
}
