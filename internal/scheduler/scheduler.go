package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/logger"
	"github.com/fekuna/omnipos-stockcount-service/internal/notify"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ActiveCycleLister is the part of the cycle usecase the heartbeat needs.
type ActiveCycleLister interface {
	ListActiveCycles(ctx context.Context) ([]dto.CycleSnapshot, error)
}

// HeartbeatScheduler republishes the rollup of every active cycle on a cron
// schedule, so clients that missed a change event catch up on the next beat.
type HeartbeatScheduler struct {
	cronEngine *cron.Cron
	cycles     ActiveCycleLister
	events     notify.Publisher
	logger     logger.ZapLogger
	spec       string
	timeout    time.Duration
	now        func() time.Time
}

func NewHeartbeatScheduler(cycles ActiveCycleLister, events notify.Publisher, log logger.ZapLogger, spec string, timeout time.Duration) *HeartbeatScheduler {
	return &HeartbeatScheduler{
		cronEngine: cron.New(cron.WithLocation(time.UTC), cron.WithSeconds()),
		cycles:     cycles,
		events:     events,
		logger:     log,
		spec:       spec,
		timeout:    timeout,
		now:        time.Now,
	}
}

func (s *HeartbeatScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.Beat(ctx); err != nil {
			s.logger.Error("Heartbeat failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add heartbeat job %q: %w", s.spec, err)
	}
	s.cronEngine.Start()
	s.logger.Info("Heartbeat scheduler started", zap.String("spec", s.spec))
	return nil
}

// Beat publishes one heartbeat per active cycle and reports how many went out.
func (s *HeartbeatScheduler) Beat(ctx context.Context) (int, error) {
	snaps, err := s.cycles.ListActiveCycles(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active cycles: %w", err)
	}
	at := s.now().UTC().Truncate(time.Millisecond)
	for i := range snaps {
		s.events.Publish(ctx, notify.Event{
			ID:        uuid.NewString(),
			Kind:      notify.KindCycleHeartbeat,
			CompanyID: snaps[i].Cycle.CompanyID,
			CycleID:   snaps[i].Cycle.ID,
			Rollup:    snaps[i].Rollup,
			At:        at,
		})
	}
	s.logger.Debug("Heartbeat", zap.Int("cycles", len(snaps)))
	return len(snaps), nil
}

// Stop waits for a running beat to finish.
func (s *HeartbeatScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Heartbeat scheduler stopped")
}
