package usecase

import (
	"context"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/model"
	"go.opentelemetry.io/otel/attribute"
)

// BuildReport lists the agreed quantity of every product of a finalized
// cycle against the book stock captured at assignment.
func (uc *cycleUseCase) BuildReport(ctx context.Context, cycleID string) (out *dto.Report, err error) {
	ctx, span := uc.startSpan(ctx, "BuildReport", attribute.String("cycle.id", cycleID))
	defer func() { finishSpan(span, err) }()

	c, err := uc.repo.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if c.State != model.CycleStateCompleted {
		return nil, apperr.New(apperr.CodeCycleNotComplete, c.ID)
	}
	counts, err := uc.repo.ListSectorCounts(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	out = &dto.Report{
		CycleID:     c.ID,
		CompanyID:   c.CompanyID,
		State:       c.State,
		FinalizedAt: c.FinalizedAt,
		Rollup:      model.ComputeRollup(counts),
		Lines:       []dto.ReportLine{},
	}
	for i := range counts {
		sc := &counts[i]
		for _, p := range sc.Products {
			d := sc.Detail(p.ProductID)
			if d == nil {
				continue
			}
			qty, ok := d.FinalQuantity()
			if !ok {
				continue
			}
			out.Lines = append(out.Lines, dto.ReportLine{
				SectorID:      sc.SectorID,
				ProductID:     p.ProductID,
				SystemStock:   p.SystemStock,
				FinalQuantity: qty,
				Difference:    qty - p.SystemStock,
				Recounted:     d.FirstRound != nil,
				Resolved:      d.Resolution != nil,
			})
		}
	}
	return out, nil
}
