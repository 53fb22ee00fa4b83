package cycle

import (
	"context"

	"github.com/fekuna/omnipos-stockcount-service/internal/model"
)

type Repository interface {
	// CreateCycle stores a new active cycle with one sector count per
	// sector. Fails with CYCLE_ALREADY_ACTIVE if the company has one.
	CreateCycle(ctx context.Context, cycle *model.InventoryCycle, counts []*model.SectorCount) error
	GetCycle(ctx context.Context, cycleID string) (*model.InventoryCycle, error)
	// GetActiveCycle returns nil when the company has no cycle in progress.
	GetActiveCycle(ctx context.Context, companyID string) (*model.InventoryCycle, error)
	ListActiveCycles(ctx context.Context) ([]model.InventoryCycle, error)

	GetSectorCount(ctx context.Context, cycleID, sectorID string) (*model.SectorCount, error)
	// ListSectorCounts returns the cycle's sector counts ordered by sector id.
	ListSectorCounts(ctx context.Context, cycleID string) ([]model.SectorCount, error)

	// SaveSectorCounts writes the cycle (when not nil) and every count in a
	// single transaction. A count whose version moved since it was loaded
	// fails the whole write.
	SaveSectorCounts(ctx context.Context, cycle *model.InventoryCycle, counts ...*model.SectorCount) error
}
