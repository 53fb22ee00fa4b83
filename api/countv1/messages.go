package countv1

import "time"

type Rollup struct {
	TotalSectors      int     `json:"total_sectors"`
	CompletedSectors  int     `json:"completed_sectors"`
	InProgressSectors int     `json:"in_progress_sectors"`
	PendingSectors    int     `json:"pending_sectors"`
	CancelledSectors  int     `json:"cancelled_sectors"`
	PercentComplete   float64 `json:"percent_complete"`
}

type Cycle struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"company_id"`
	State       string     `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

type SectorSummary struct {
	SectorID string `json:"sector_id"`
	State    string `json:"state"`
	Round    int32  `json:"round"`
	CounterA string `json:"counter_a"`
	CounterB string `json:"counter_b"`
}

// ProductLine is one product of a sector count as the clients render it.
type ProductLine struct {
	ProductID           string   `json:"product_id"`
	SystemStock         int64    `json:"system_stock"`
	QtyA                int64    `json:"qty_a"`
	ExprA               []string `json:"expr_a"`
	QtyB                int64    `json:"qty_b"`
	ExprB               []string `json:"expr_b"`
	DiffVsSystem        *int64   `json:"diff_vs_system,omitempty"`
	DiffBetweenCounters *int64   `json:"diff_between_counters,omitempty"`
	State               string   `json:"state"`
	InRecount           bool     `json:"in_recount"`
	ResolvedBy          string   `json:"resolved_by,omitempty"`
}

type SectorCount struct {
	ID              string        `json:"id"`
	CycleID         string        `json:"cycle_id"`
	SectorID        string        `json:"sector_id"`
	CounterA        string        `json:"counter_a"`
	CounterB        string        `json:"counter_b"`
	State           string        `json:"state"`
	SubStateA       string        `json:"sub_state_a"`
	SubStateB       string        `json:"sub_state_b"`
	RoundAFinalized bool          `json:"round_a_finalized"`
	RoundBFinalized bool          `json:"round_b_finalized"`
	Round           int32         `json:"round"`
	Products        []ProductLine `json:"products"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type StartCycleRequest struct{}

type GetActiveCycleRequest struct{}

type CycleRequest struct {
	CycleID string `json:"cycle_id"`
}

type CycleResponse struct {
	Cycle   Cycle           `json:"cycle"`
	Rollup  Rollup          `json:"rollup"`
	Sectors []SectorSummary `json:"sectors"`
}

type SectorRequest struct {
	CycleID  string `json:"cycle_id"`
	SectorID string `json:"sector_id"`
}

type AssignCountersRequest struct {
	CycleID  string `json:"cycle_id"`
	SectorID string `json:"sector_id"`
	CounterA string `json:"counter_a"`
	CounterB string `json:"counter_b"`
}

type SectorCountResponse struct {
	SectorCount SectorCount `json:"sector_count"`
	Rollup      Rollup      `json:"rollup"`
}

// SubmitCountRequest defaults CounterID to the calling user.
type SubmitCountRequest struct {
	CycleID    string `json:"cycle_id"`
	SectorID   string `json:"sector_id"`
	ProductID  string `json:"product_id"`
	CounterID  string `json:"counter_id,omitempty"`
	Expression string `json:"expression"`
}

type ProductCountResponse struct {
	CycleID     string      `json:"cycle_id"`
	SectorID    string      `json:"sector_id"`
	SectorState string      `json:"sector_state"`
	Round       int32       `json:"round"`
	Product     ProductLine `json:"product"`
	Rollup      Rollup      `json:"rollup"`
}

type FinalizeRequest struct {
	CycleID   string `json:"cycle_id"`
	SectorID  string `json:"sector_id"`
	CounterID string `json:"counter_id,omitempty"`
}

type RecountItem struct {
	ProductID           string   `json:"product_id"`
	SystemStock         int64    `json:"system_stock"`
	CounterA            string   `json:"counter_a"`
	QtyA                int64    `json:"qty_a"`
	ExprA               []string `json:"expr_a"`
	CounterB            string   `json:"counter_b"`
	QtyB                int64    `json:"qty_b"`
	ExprB               []string `json:"expr_b"`
	DiffBetweenCounters int64    `json:"diff_between_counters"`
	DiffVsSystem        int64    `json:"diff_vs_system"`
}

type RecountReferenceResponse struct {
	Items []RecountItem `json:"items"`
}

type PeerTallyRequest struct {
	CycleID   string `json:"cycle_id"`
	SectorID  string `json:"sector_id"`
	ProductID string `json:"product_id"`
	CounterID string `json:"counter_id,omitempty"`
}

type PeerTallyResponse struct {
	ProductID string     `json:"product_id"`
	CounterID string     `json:"counter_id"`
	Quantity  int64      `json:"quantity"`
	Events    []string   `json:"events"`
	Terms     [][]string `json:"terms"`
}

type ResolveDifferencesRequest struct {
	CycleID     string            `json:"cycle_id"`
	SectorID    string            `json:"sector_id"`
	Resolutions map[string]string `json:"resolutions"`
}

// CycleEvent tells a watcher that something in the cycle changed. The first
// event of a stream has kind "watch.started" and carries the current rollup.
type CycleEvent struct {
	EventID  string    `json:"event_id"`
	Kind     string    `json:"kind"`
	CycleID  string    `json:"cycle_id"`
	SectorID string    `json:"sector_id,omitempty"`
	State    string    `json:"state,omitempty"`
	Round    int32     `json:"round,omitempty"`
	Rollup   Rollup    `json:"rollup"`
	At       time.Time `json:"at"`
}
