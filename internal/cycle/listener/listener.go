package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-stockcount-service/internal/cycle"
	"github.com/fekuna/omnipos-stockcount-service/internal/logger"
	"github.com/fekuna/omnipos-stockcount-service/internal/notify"
	"github.com/fekuna/omnipos-stockcount-service/internal/report"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

func NewConsumer(cfg *ConsumerConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// ReportListener builds and indexes the report of every finalized cycle
// seen on the events topic.
type ReportListener struct {
	consumer Consumer
	uc       cycle.UseCase
	indexer  report.Indexer
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewReportListener(consumer Consumer, uc cycle.UseCase, indexer report.Indexer, log logger.ZapLogger) *ReportListener {
	return &ReportListener{
		consumer: consumer,
		uc:       uc,
		indexer:  indexer,
		logger:   log,
		backoff:  time.Second,
	}
}

func (l *ReportListener) Start(ctx context.Context) {
	l.logger.Info("Starting cycle report listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping cycle report listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.backoff):
				}
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *ReportListener) processMessage(ctx context.Context, value []byte) {
	var event notify.Event
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}
	if event.Kind != notify.KindCycleFinalized {
		return
	}

	l.logger.Info("Processing finalized cycle", zap.String("cycle_id", event.CycleID))

	rep, err := l.uc.BuildReport(ctx, event.CycleID)
	if err != nil {
		l.logger.Error("Failed to build cycle report", zap.String("cycle_id", event.CycleID), zap.Error(err))
		return
	}
	if err := l.indexer.Index(ctx, rep); err != nil {
		l.logger.Error("Failed to index cycle report", zap.String("cycle_id", event.CycleID), zap.Error(err))
	}
}
