package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
	"github.com/fekuna/omnipos-stockcount-service/internal/catalog"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/ledger"
	"github.com/fekuna/omnipos-stockcount-service/internal/lock"
	"github.com/fekuna/omnipos-stockcount-service/internal/logger"
	"github.com/fekuna/omnipos-stockcount-service/internal/model"
	"github.com/fekuna/omnipos-stockcount-service/internal/notify"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/fekuna/omnipos-stockcount-service/internal/cycle"

type cycleUseCase struct {
	repo    cycle.Repository
	catalog catalog.Repository
	locker  lock.Locker
	events  notify.Publisher
	policy  ledger.StockPolicy
	logger  logger.ZapLogger
	tracer  trace.Tracer
	now     func() time.Time
	newID   func() string
}

type Option func(*cycleUseCase)

func WithClock(now func() time.Time) Option {
	return func(uc *cycleUseCase) { uc.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(uc *cycleUseCase) { uc.newID = newID }
}

func WithTracer(tp trace.TracerProvider) Option {
	return func(uc *cycleUseCase) { uc.tracer = tp.Tracer(tracerName) }
}

func NewCycleUseCase(
	repo cycle.Repository,
	cat catalog.Repository,
	locker lock.Locker,
	events notify.Publisher,
	policy ledger.StockPolicy,
	log logger.ZapLogger,
	opts ...Option,
) cycle.UseCase {
	if policy == "" {
		policy = ledger.StockPolicyCounterA
	}
	if events == nil {
		events = notify.Nop()
	}
	uc := &cycleUseCase{
		repo:    repo,
		catalog: cat,
		locker:  locker,
		events:  events,
		policy:  policy,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// clock returns the current time at the precision the store keeps, so a
// value handed back from a mutation equals the one read back later.
func (uc *cycleUseCase) clock() time.Time {
	return uc.now().UTC().Truncate(time.Millisecond)
}

func (uc *cycleUseCase) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return uc.tracer.Start(ctx, "cycle."+name, trace.WithAttributes(attrs...))
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// acquire takes the locks in the given order and returns a func releasing
// all of them. On failure nothing stays held.
func (uc *cycleUseCase) acquire(ctx context.Context, keys ...string) (func(), error) {
	held := make([]lock.Lock, 0, len(keys))
	release := func() {
		rctx := context.WithoutCancel(ctx)
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(rctx); err != nil {
				uc.logger.Warn("Failed to release lock", zap.Error(err))
			}
		}
	}
	for _, key := range keys {
		lk, err := uc.locker.Acquire(ctx, key)
		if err != nil {
			release()
			return nil, err
		}
		held = append(held, lk)
	}
	return release, nil
}

// loadCycle hides cycles of other companies behind NOT_FOUND.
func (uc *cycleUseCase) loadCycle(ctx context.Context, companyID, cycleID string) (*model.InventoryCycle, error) {
	c, err := uc.repo.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if c.CompanyID != companyID {
		return nil, apperr.New(apperr.CodeNotFound, "cycle "+cycleID)
	}
	return c, nil
}

func (uc *cycleUseCase) rollup(ctx context.Context, cycleID string) (model.Rollup, error) {
	counts, err := uc.repo.ListSectorCounts(ctx, cycleID)
	if err != nil {
		return model.Rollup{}, err
	}
	return model.ComputeRollup(counts), nil
}

func (uc *cycleUseCase) persistFailed(op string, err error, fields ...zap.Field) {
	if apperr.CodeOf(err) != "" {
		return
	}
	uc.logger.Error("Failed to persist "+op, append(fields, zap.Error(err))...)
}

func cycleSnapshot(c *model.InventoryCycle, counts []model.SectorCount) *dto.CycleSnapshot {
	s := &dto.CycleSnapshot{
		Cycle:   *c,
		Rollup:  model.ComputeRollup(counts),
		Sectors: make([]dto.SectorSummary, len(counts)),
	}
	for i, sc := range counts {
		s.Sectors[i] = dto.SectorSummary{
			SectorID: sc.SectorID,
			State:    sc.State,
			Round:    sc.Round,
			CounterA: sc.CounterA.CounterID,
			CounterB: sc.CounterB.CounterID,
		}
	}
	return s
}

func (uc *cycleUseCase) publish(ctx context.Context, kind notify.Kind, c *model.InventoryCycle, sc *model.SectorCount, state model.SectorState, rollup model.Rollup) {
	ev := notify.Event{
		ID:        uc.newID(),
		Kind:      kind,
		CompanyID: c.CompanyID,
		CycleID:   c.ID,
		Rollup:    rollup,
		At:        uc.clock(),
	}
	if sc != nil {
		ev.SectorID = sc.SectorID
		ev.State = state
		ev.Round = sc.Round
	}
	uc.events.Publish(ctx, ev)
}
