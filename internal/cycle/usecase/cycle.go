package usecase

import (
	"context"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/lock"
	"github.com/fekuna/omnipos-stockcount-service/internal/model"
	"github.com/fekuna/omnipos-stockcount-service/internal/notify"
	"github.com/fekuna/omnipos-stockcount-service/internal/sectorcount"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func (uc *cycleUseCase) StartCycle(ctx context.Context, input *dto.StartCycleInput) (out *dto.CycleSnapshot, err error) {
	ctx, span := uc.startSpan(ctx, "StartCycle", attribute.String("company.id", input.CompanyID))
	defer func() { finishSpan(span, err) }()

	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	release, err := uc.acquire(ctx, lock.CompanyKey(input.CompanyID))
	if err != nil {
		return nil, err
	}
	defer release()

	active, err := uc.repo.GetActiveCycle(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperr.New(apperr.CodeCycleAlreadyActive, active.ID)
	}

	sectors, err := uc.catalog.ListSectors(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}

	now := uc.clock()
	c := &model.InventoryCycle{
		ID:        uc.newID(),
		CompanyID: input.CompanyID,
		State:     model.CycleStateInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	counts := make([]*model.SectorCount, len(sectors))
	for i, s := range sectors {
		counts[i] = model.NewSectorCount(uc.newID(), c.ID, s.ID, now)
	}
	if err := uc.repo.CreateCycle(ctx, c, counts); err != nil {
		uc.persistFailed("cycle", err, zap.String("company_id", input.CompanyID))
		return nil, err
	}

	stored, err := uc.repo.ListSectorCounts(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	out = cycleSnapshot(c, stored)

	uc.logger.Info("Inventory cycle started",
		zap.String("company_id", c.CompanyID),
		zap.String("cycle_id", c.ID),
		zap.Int("sectors", len(counts)),
	)
	uc.publish(ctx, notify.KindCycleStarted, c, nil, "", out.Rollup)
	return out, nil
}

func (uc *cycleUseCase) GetActiveCycle(ctx context.Context, companyID string) (*dto.CycleSnapshot, error) {
	if companyID == "" {
		return nil, apperr.New(apperr.CodeInvalidInput, "CompanyID:required")
	}
	c, err := uc.repo.GetActiveCycle(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.New(apperr.CodeNoActiveCycle, companyID)
	}
	counts, err := uc.repo.ListSectorCounts(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return cycleSnapshot(c, counts), nil
}

func (uc *cycleUseCase) GetCycle(ctx context.Context, ref *dto.CycleRef) (*dto.CycleSnapshot, error) {
	if err := dto.Validate(ref); err != nil {
		return nil, err
	}
	c, err := uc.loadCycle(ctx, ref.CompanyID, ref.CycleID)
	if err != nil {
		return nil, err
	}
	counts, err := uc.repo.ListSectorCounts(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return cycleSnapshot(c, counts), nil
}

func (uc *cycleUseCase) ListActiveCycles(ctx context.Context) ([]dto.CycleSnapshot, error) {
	cycles, err := uc.repo.ListActiveCycles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CycleSnapshot, 0, len(cycles))
	for i := range cycles {
		counts, err := uc.repo.ListSectorCounts(ctx, cycles[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *cycleSnapshot(&cycles[i], counts))
	}
	return out, nil
}

// lockCycle takes every sector lock of an active cycle in sector order and
// reloads the cycle and its sectors under them.
func (uc *cycleUseCase) lockCycle(ctx context.Context, ref *dto.CycleRef) (*model.InventoryCycle, []model.SectorCount, func(), error) {
	c, err := uc.loadCycle(ctx, ref.CompanyID, ref.CycleID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !c.Active() {
		return nil, nil, nil, apperr.New(apperr.CodeNoActiveCycle, c.ID)
	}
	counts, err := uc.repo.ListSectorCounts(ctx, c.ID)
	if err != nil {
		return nil, nil, nil, err
	}

	// Sectors are fixed at cycle start, so the key set cannot grow.
	keys := make([]string, 0, len(counts)+1)
	keys = append(keys, lock.CycleKey(c.ID))
	for _, sc := range counts {
		keys = append(keys, lock.SectorKey(c.ID, sc.SectorID))
	}
	release, err := uc.acquire(ctx, keys...)
	if err != nil {
		return nil, nil, nil, err
	}

	c, err = uc.repo.GetCycle(ctx, c.ID)
	if err == nil && !c.Active() {
		err = apperr.New(apperr.CodeNoActiveCycle, c.ID)
	}
	if err == nil {
		counts, err = uc.repo.ListSectorCounts(ctx, c.ID)
	}
	if err != nil {
		release()
		return nil, nil, nil, err
	}
	return c, counts, release, nil
}

// CancelCycle cancels every sector still being counted and the cycle itself
// in one write. Completed sectors keep their result.
func (uc *cycleUseCase) CancelCycle(ctx context.Context, ref *dto.CycleRef) (out *dto.CycleSnapshot, err error) {
	ctx, span := uc.startSpan(ctx, "CancelCycle", attribute.String("cycle.id", ref.CycleID))
	defer func() { finishSpan(span, err) }()

	if err := dto.Validate(ref); err != nil {
		return nil, err
	}

	c, counts, release, err := uc.lockCycle(ctx, ref)
	if err != nil {
		return nil, err
	}
	changed, err := func() ([]*model.SectorCount, error) {
		defer release()

		next := *c
		now := uc.clock()
		next.State = model.CycleStateCancelled
		next.CancelledAt = &now
		next.UpdatedAt = now

		var changed []*model.SectorCount
		for i := range counts {
			if counts[i].State.Terminal() {
				continue
			}
			sc := counts[i].Clone()
			if err := sectorcount.New(sc, uc.policy, uc.clock).Cancel(); err != nil {
				return nil, err
			}
			changed = append(changed, sc)
		}
		if err := uc.repo.SaveSectorCounts(ctx, &next, changed...); err != nil {
			uc.persistFailed("cycle cancellation", err, zap.String("cycle_id", c.ID))
			return nil, err
		}
		*c = next
		return changed, nil
	}()
	if err != nil {
		return nil, err
	}

	stored, err := uc.repo.ListSectorCounts(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	out = cycleSnapshot(c, stored)

	uc.logger.Info("Inventory cycle cancelled",
		zap.String("company_id", c.CompanyID),
		zap.String("cycle_id", c.ID),
		zap.Int("sectors_cancelled", len(changed)),
	)
	for _, sc := range changed {
		uc.publish(ctx, notify.KindSectorChanged, c, sc, sc.State, out.Rollup)
	}
	uc.publish(ctx, notify.KindCycleCancelled, c, nil, "", out.Rollup)
	return out, nil
}

// FinalizeCycle closes a cycle whose sectors are all completed. A cycle
// without sectors can always be finalized.
func (uc *cycleUseCase) FinalizeCycle(ctx context.Context, ref *dto.CycleRef) (out *dto.CycleSnapshot, err error) {
	ctx, span := uc.startSpan(ctx, "FinalizeCycle", attribute.String("cycle.id", ref.CycleID))
	defer func() { finishSpan(span, err) }()

	if err := dto.Validate(ref); err != nil {
		return nil, err
	}

	c, counts, release, err := uc.lockCycle(ctx, ref)
	if err != nil {
		return nil, err
	}
	err = func() error {
		defer release()

		var incomplete []string
		for _, sc := range counts {
			if sc.State != model.SectorStateCompleted {
				incomplete = append(incomplete, sc.SectorID)
			}
		}
		if len(incomplete) > 0 {
			return apperr.New(apperr.CodeCycleNotComplete, incomplete...)
		}

		next := *c
		now := uc.clock()
		next.State = model.CycleStateCompleted
		next.FinalizedAt = &now
		next.UpdatedAt = now
		if err := uc.repo.SaveSectorCounts(ctx, &next); err != nil {
			uc.persistFailed("cycle finalization", err, zap.String("cycle_id", c.ID))
			return err
		}
		*c = next
		return nil
	}()
	if err != nil {
		return nil, err
	}

	out = cycleSnapshot(c, counts)
	uc.logger.Info("Inventory cycle finalized",
		zap.String("company_id", c.CompanyID),
		zap.String("cycle_id", c.ID),
	)
	uc.publish(ctx, notify.KindCycleFinalized, c, nil, "", out.Rollup)
	return out, nil
}
