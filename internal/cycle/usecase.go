package cycle

import (
	"context"

	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/ledger"
)

type UseCase interface {
	// Cycle lifecycle
	StartCycle(ctx context.Context, input *dto.StartCycleInput) (*dto.CycleSnapshot, error)
	GetActiveCycle(ctx context.Context, companyID string) (*dto.CycleSnapshot, error)
	GetCycle(ctx context.Context, ref *dto.CycleRef) (*dto.CycleSnapshot, error)
	ListActiveCycles(ctx context.Context) ([]dto.CycleSnapshot, error)
	CancelCycle(ctx context.Context, ref *dto.CycleRef) (*dto.CycleSnapshot, error)
	FinalizeCycle(ctx context.Context, ref *dto.CycleRef) (*dto.CycleSnapshot, error)

	// Sector counting
	GetSectorCount(ctx context.Context, ref *dto.SectorRef) (*dto.SectorCountSnapshot, error)
	AssignCounters(ctx context.Context, input *dto.AssignCountersInput) (*dto.SectorCountSnapshot, error)
	SubmitCount(ctx context.Context, input *dto.SubmitCountInput) (*dto.ProductCountSnapshot, error)
	FinalizeRound(ctx context.Context, input *dto.FinalizeInput) (*dto.SectorCountSnapshot, error)
	GetPeerTally(ctx context.Context, input *dto.PeerTallyInput) (*ledger.TallySnapshot, error)

	// Recount and resolution
	GetRecountReference(ctx context.Context, ref *dto.SectorRef) ([]dto.RecountReference, error)
	SubmitRecount(ctx context.Context, input *dto.SubmitCountInput) (*dto.ProductCountSnapshot, error)
	FinalizeRecount(ctx context.Context, input *dto.FinalizeInput) (*dto.SectorCountSnapshot, error)
	ResolveDifferences(ctx context.Context, input *dto.ResolveInput) (*dto.SectorCountSnapshot, error)

	// Reporting
	BuildReport(ctx context.Context, cycleID string) (*dto.Report, error)
}
