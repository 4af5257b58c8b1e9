package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tcua/price-index-service/internal/models"
)

// Producer publishes run lifecycle events for downstream collaborators
// (dashboard refresh, notifier).
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishRunCompleted announces a successful run with its quality record.
func (p *Producer) PublishRunCompleted(ctx context.Context, date time.Time, source string, quality *models.QualityLogEntry) error {
	event := models.RunEvent{
		EventType: "RUN_COMPLETED",
		Date:      date,
		Source:    source,
		Quality:   quality,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, date.Format("2006-01-02"), event)
}

// PublishRunFailed announces an aborted run.
func (p *Producer) PublishRunFailed(ctx context.Context, date time.Time, source string, runErr error) error {
	event := models.RunEvent{
		EventType: "RUN_FAILED",
		Date:      date,
		Source:    source,
		Error:     runErr.Error(),
		Timestamp: time.Now(),
	}
	return p.publish(ctx, date.Format("2006-01-02"), event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.RunEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
