// Package catalog reads the sectors a company counts and the book stock of
// the products stored in them.
package catalog

import (
	"context"

	"github.com/fekuna/omnipos-stockcount-service/internal/model"
)

type Repository interface {
	// ListSectors returns the company's active sectors in display order.
	ListSectors(ctx context.Context, companyID string) ([]model.Sector, error)
	GetSector(ctx context.Context, companyID, sectorID string) (*model.Sector, error)
	// ListSectorProducts returns, per sector id, the products with their
	// current book stock ordered by product id.
	ListSectorProducts(ctx context.Context, sectorIDs []string) (map[string][]model.SectorProduct, error)

	UpsertSector(ctx context.Context, sector *model.Sector) error
	UpsertStock(ctx context.Context, levels []model.StockLevel) error
}
