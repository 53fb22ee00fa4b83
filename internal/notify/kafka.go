package notify

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-stockcount-service/internal/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by cycle id, so one cycle's events
// land on one partition in order.
type KafkaPublisher struct {
	writer MessageWriter
	logger logger.ZapLogger
}

func NewKafkaWriter(brokers []string, topic string, log logger.ZapLogger) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Warn("Failed to deliver stock count events", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
}

func NewKafkaPublisher(w MessageWriter, log logger.ZapLogger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) {
	value, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.String("event_type", string(ev.Kind)), zap.Error(err))
		return
	}
	// Async writer: this only enqueues.
	if err := p.writer.WriteMessages(context.WithoutCancel(ctx), kafka.Message{
		Key:   []byte(ev.CycleID),
		Value: value,
	}); err != nil {
		p.logger.Warn("Failed to publish event",
			zap.String("event_type", string(ev.Kind)),
			zap.String("cycle_id", ev.CycleID),
			zap.Error(err),
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
