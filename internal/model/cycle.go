package model

import "time"

type CycleState string

const (
	CycleStatePending    CycleState = "PENDING"
	CycleStateInProgress CycleState = "IN_PROGRESS"
	CycleStateCompleted  CycleState = "COMPLETED"
	CycleStateCancelled  CycleState = "CANCELLED"
)

// InventoryCycle is one full counting run across a company's sectors. Its
// progress figures are derived from the owned sector counts (see Rollup).
type InventoryCycle struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"company_id"`
	State       CycleState `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (c *InventoryCycle) Active() bool {
	return c.State == CycleStateInProgress
}

type Rollup struct {
	TotalSectors      int     `json:"total_sectors"`
	CompletedSectors  int     `json:"completed_sectors"`
	InProgressSectors int     `json:"in_progress_sectors"`
	PendingSectors    int     `json:"pending_sectors"`
	CancelledSectors  int     `json:"cancelled_sectors"`
	PercentComplete   float64 `json:"percent_complete"`
}

// ComputeRollup counts sectors by state. PercentComplete is 0 for a cycle
// without sectors.
func ComputeRollup(sectors []SectorCount) Rollup {
	r := Rollup{TotalSectors: len(sectors)}
	for i := range sectors {
		switch sectors[i].State {
		case SectorStateCompleted:
			r.CompletedSectors++
		case SectorStatePending:
			r.PendingSectors++
		case SectorStateCancelled:
			r.CancelledSectors++
		default:
			r.InProgressSectors++
		}
	}
	if r.TotalSectors > 0 {
		r.PercentComplete = float64(r.CompletedSectors) / float64(r.TotalSectors) * 100
	}
	return r
}
