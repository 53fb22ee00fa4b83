package usecase

import (
	"context"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/ledger"
	"github.com/fekuna/omnipos-stockcount-service/internal/lock"
	"github.com/fekuna/omnipos-stockcount-service/internal/model"
	"github.com/fekuna/omnipos-stockcount-service/internal/notify"
	"github.com/fekuna/omnipos-stockcount-service/internal/sectorcount"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type mutation struct {
	cycle   *model.InventoryCycle
	sector  *model.SectorCount
	visited []model.SectorState
	rollup  model.Rollup
}

// mutateSector runs op against a clone of the sector count under the sector
// lock. The clone replaces the stored count only if op succeeds and the
// write commits; events go out after the lock is released.
func (uc *cycleUseCase) mutateSector(ctx context.Context, ref *dto.SectorRef, op func(ctx context.Context, m *sectorcount.Machine) error) (*mutation, error) {
	res, err := func() (*mutation, error) {
		release, err := uc.acquire(ctx, lock.SectorKey(ref.CycleID, ref.SectorID))
		if err != nil {
			return nil, err
		}
		defer release()

		c, err := uc.loadCycle(ctx, ref.CompanyID, ref.CycleID)
		if err != nil {
			return nil, err
		}
		if !c.Active() {
			return nil, apperr.New(apperr.CodeSectorClosed, "cycle "+string(c.State))
		}
		current, err := uc.repo.GetSectorCount(ctx, ref.CycleID, ref.SectorID)
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		m := sectorcount.New(next, uc.policy, uc.clock)
		if err := op(ctx, m); err != nil {
			return nil, err
		}
		if err := uc.repo.SaveSectorCounts(ctx, nil, next); err != nil {
			uc.persistFailed("sector count", err,
				zap.String("cycle_id", ref.CycleID),
				zap.String("sector_id", ref.SectorID),
			)
			return nil, err
		}
		return &mutation{cycle: c, sector: next, visited: m.Visited()}, nil
	}()
	if err != nil {
		return nil, err
	}

	res.rollup, err = uc.rollup(ctx, ref.CycleID)
	if err != nil {
		return nil, err
	}

	visited := res.visited
	if len(visited) == 0 {
		visited = []model.SectorState{res.sector.State}
	}
	for _, state := range visited {
		uc.publish(ctx, notify.KindSectorChanged, res.cycle, res.sector, state, res.rollup)
	}
	if len(res.visited) > 0 {
		uc.logger.Debug("Sector state changed",
			zap.String("cycle_id", ref.CycleID),
			zap.String("sector_id", ref.SectorID),
			zap.String("state", string(res.sector.State)),
			zap.Int("round", res.sector.Round),
		)
	}
	return res, nil
}

func (uc *cycleUseCase) loadSector(ctx context.Context, ref *dto.SectorRef) (*model.SectorCount, error) {
	if _, err := uc.loadCycle(ctx, ref.CompanyID, ref.CycleID); err != nil {
		return nil, err
	}
	return uc.repo.GetSectorCount(ctx, ref.CycleID, ref.SectorID)
}

func (uc *cycleUseCase) GetSectorCount(ctx context.Context, ref *dto.SectorRef) (*dto.SectorCountSnapshot, error) {
	if err := dto.Validate(ref); err != nil {
		return nil, err
	}
	sc, err := uc.loadSector(ctx, ref)
	if err != nil {
		return nil, err
	}
	rollup, err := uc.rollup(ctx, ref.CycleID)
	if err != nil {
		return nil, err
	}
	return &dto.SectorCountSnapshot{SectorCount: *sc, Rollup: rollup}, nil
}

func (uc *cycleUseCase) AssignCounters(ctx context.Context, input *dto.AssignCountersInput) (out *dto.SectorCountSnapshot, err error) {
	ctx, span := uc.startSpan(ctx, "AssignCounters",
		attribute.String("cycle.id", input.CycleID),
		attribute.String("sector.id", input.SectorID),
	)
	defer func() { finishSpan(span, err) }()

	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	res, err := uc.mutateSector(ctx, &input.SectorRef, func(ctx context.Context, m *sectorcount.Machine) error {
		var products []model.SectorProduct
		if !m.SectorCount().Assigned() {
			bySector, err := uc.catalog.ListSectorProducts(ctx, []string{input.SectorID})
			if err != nil {
				return err
			}
			products = bySector[input.SectorID]
		}
		return m.Assign(input.CounterA, input.CounterB, products)
	})
	if err != nil {
		return nil, err
	}
	return &dto.SectorCountSnapshot{SectorCount: *res.sector, Rollup: res.rollup}, nil
}

func (uc *cycleUseCase) submit(ctx context.Context, name string, round int, input *dto.SubmitCountInput) (out *dto.ProductCountSnapshot, err error) {
	ctx, span := uc.startSpan(ctx, name,
		attribute.String("cycle.id", input.CycleID),
		attribute.String("sector.id", input.SectorID),
		attribute.String("product.id", input.ProductID),
		attribute.Int("round", round),
	)
	defer func() { finishSpan(span, err) }()

	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	var detail model.ProductCountDetail
	res, err := uc.mutateSector(ctx, &input.SectorRef, func(_ context.Context, m *sectorcount.Machine) error {
		d, err := m.Submit(input.CounterID, input.ProductID, input.Expression, round)
		if err != nil {
			return err
		}
		detail = d.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.ProductCountSnapshot{
		CycleID:     input.CycleID,
		SectorID:    input.SectorID,
		SectorState: res.sector.State,
		Round:       res.sector.Round,
		Detail:      detail,
		Rollup:      res.rollup,
	}, nil
}

func (uc *cycleUseCase) SubmitCount(ctx context.Context, input *dto.SubmitCountInput) (*dto.ProductCountSnapshot, error) {
	return uc.submit(ctx, "SubmitCount", model.RoundCount, input)
}

func (uc *cycleUseCase) SubmitRecount(ctx context.Context, input *dto.SubmitCountInput) (*dto.ProductCountSnapshot, error) {
	return uc.submit(ctx, "SubmitRecount", model.RoundRecount, input)
}

func (uc *cycleUseCase) finalize(ctx context.Context, name string, round int, input *dto.FinalizeInput) (out *dto.SectorCountSnapshot, err error) {
	ctx, span := uc.startSpan(ctx, name,
		attribute.String("cycle.id", input.CycleID),
		attribute.String("sector.id", input.SectorID),
		attribute.Int("round", round),
	)
	defer func() { finishSpan(span, err) }()

	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	res, err := uc.mutateSector(ctx, &input.SectorRef, func(_ context.Context, m *sectorcount.Machine) error {
		return m.Finalize(input.CounterID, round)
	})
	if err != nil {
		return nil, err
	}
	return &dto.SectorCountSnapshot{SectorCount: *res.sector, Rollup: res.rollup}, nil
}

func (uc *cycleUseCase) FinalizeRound(ctx context.Context, input *dto.FinalizeInput) (*dto.SectorCountSnapshot, error) {
	return uc.finalize(ctx, "FinalizeRound", model.RoundCount, input)
}

func (uc *cycleUseCase) FinalizeRecount(ctx context.Context, input *dto.FinalizeInput) (*dto.SectorCountSnapshot, error) {
	return uc.finalize(ctx, "FinalizeRecount", model.RoundRecount, input)
}

func (uc *cycleUseCase) ResolveDifferences(ctx context.Context, input *dto.ResolveInput) (out *dto.SectorCountSnapshot, err error) {
	ctx, span := uc.startSpan(ctx, "ResolveDifferences",
		attribute.String("cycle.id", input.CycleID),
		attribute.String("sector.id", input.SectorID),
	)
	defer func() { finishSpan(span, err) }()

	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	res, err := uc.mutateSector(ctx, &input.SectorRef, func(_ context.Context, m *sectorcount.Machine) error {
		return m.Resolve(input.ResolvedBy, input.Resolutions)
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Sector differences resolved",
		zap.String("cycle_id", input.CycleID),
		zap.String("sector_id", input.SectorID),
		zap.String("resolved_by", input.ResolvedBy),
		zap.Int("products", len(input.Resolutions)),
	)
	return &dto.SectorCountSnapshot{SectorCount: *res.sector, Rollup: res.rollup}, nil
}

// GetPeerTally shows the other counter's tally of a product so the caller
// can reuse one of its terms.
func (uc *cycleUseCase) GetPeerTally(ctx context.Context, input *dto.PeerTallyInput) (*ledger.TallySnapshot, error) {
	if err := dto.Validate(input); err != nil {
		return nil, err
	}
	sc, err := uc.loadSector(ctx, &input.SectorRef)
	if err != nil {
		return nil, err
	}
	slot, ok := sc.SlotOf(input.CounterID)
	if !ok {
		return nil, apperr.New(apperr.CodeNotAssigned, input.CounterID)
	}
	if _, ok := sc.Product(input.ProductID); !ok {
		return nil, apperr.New(apperr.CodeProductNotInScope, input.ProductID)
	}
	snap := ledger.Snapshot(sc, slot.Peer(), input.ProductID)
	return &snap, nil
}

func (uc *cycleUseCase) GetRecountReference(ctx context.Context, ref *dto.SectorRef) ([]dto.RecountReference, error) {
	if err := dto.Validate(ref); err != nil {
		return nil, err
	}
	sc, err := uc.loadSector(ctx, ref)
	if err != nil {
		return nil, err
	}
	if sc.Round < model.RoundRecount {
		return nil, apperr.New(apperr.CodeWrongRound, "no recount for sector "+sc.SectorID)
	}

	out := make([]dto.RecountReference, 0, len(sc.RecountScope))
	for _, id := range sc.RecountScope {
		d := sc.Detail(id)
		if d == nil || d.FirstRound == nil {
			continue
		}
		out = append(out, dto.RecountReference{
			ProductID:           id,
			SystemStock:         d.SystemStock,
			CounterA:            sc.CounterA.CounterID,
			CounterB:            sc.CounterB.CounterID,
			A:                   d.FirstRound.A,
			B:                   d.FirstRound.B,
			DiffBetweenCounters: d.FirstRound.DiffBetweenCounters,
			DiffVsSystem:        d.FirstRound.DiffVsSystem,
		})
	}
	return out, nil
}
