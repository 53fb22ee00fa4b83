package dto

import (
	"time"

	"github.com/fekuna/omnipos-stockcount-service/internal/model"
)

type SectorSummary struct {
	SectorID string            `json:"sector_id"`
	State    model.SectorState `json:"state"`
	Round    int               `json:"round"`
	CounterA string            `json:"counter_a"`
	CounterB string            `json:"counter_b"`
}

type CycleSnapshot struct {
	Cycle   model.InventoryCycle `json:"cycle"`
	Rollup  model.Rollup         `json:"rollup"`
	Sectors []SectorSummary      `json:"sectors"`
}

type SectorCountSnapshot struct {
	SectorCount model.SectorCount `json:"sector_count"`
	Rollup      model.Rollup      `json:"rollup"`
}

type ProductCountSnapshot struct {
	CycleID     string                   `json:"cycle_id"`
	SectorID    string                   `json:"sector_id"`
	SectorState model.SectorState        `json:"sector_state"`
	Round       int                      `json:"round"`
	Detail      model.ProductCountDetail `json:"detail"`
	Rollup      model.Rollup             `json:"rollup"`
}

// RecountReference shows both counters' first-round figures for a product
// under recount. It is read-only.
type RecountReference struct {
	ProductID           string      `json:"product_id"`
	SystemStock         int64       `json:"system_stock"`
	CounterA            string      `json:"counter_a"`
	CounterB            string      `json:"counter_b"`
	A                   model.Tally `json:"a"`
	B                   model.Tally `json:"b"`
	DiffBetweenCounters int64       `json:"diff_between_counters"`
	DiffVsSystem        int64       `json:"diff_vs_system"`
}

type ReportLine struct {
	SectorID      string `json:"sector_id"`
	ProductID     string `json:"product_id"`
	SystemStock   int64  `json:"system_stock"`
	FinalQuantity int64  `json:"final_quantity"`
	Difference    int64  `json:"difference"`
	Recounted     bool   `json:"recounted"`
	Resolved      bool   `json:"resolved"`
}

// Report is the outcome of a finalized cycle, one line per counted product.
type Report struct {
	CycleID     string           `json:"cycle_id"`
	CompanyID   string           `json:"company_id"`
	State       model.CycleState `json:"state"`
	FinalizedAt *time.Time       `json:"finalized_at,omitempty"`
	Rollup      model.Rollup     `json:"rollup"`
	Lines       []ReportLine     `json:"lines"`
}
