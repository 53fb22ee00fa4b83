package model

import "time"

// Slot identifies which of the two counter positions of a sector a counter
// occupies.
type Slot string

const (
	SlotA Slot = "A"
	SlotB Slot = "B"
)

func (s Slot) Peer() Slot {
	if s == SlotA {
		return SlotB
	}
	return SlotA
}

type CounterSlot struct {
	CounterID       string       `json:"counter_id"`
	State           CounterState `json:"state"`
	Round1Finalized bool         `json:"round1_finalized"`
	Round2Finalized bool         `json:"round2_finalized"`
}

func (c *CounterSlot) Finalized(round int) bool {
	if round >= RoundRecount {
		return c.Round2Finalized
	}
	return c.Round1Finalized
}

// SectorProduct is a product of the sector together with the book stock
// captured when the sector was first assigned.
type SectorProduct struct {
	ProductID   string `json:"product_id"`
	SystemStock int64  `json:"system_stock"`
}

// SectorCount is one sector's counting effort within a cycle.
type SectorCount struct {
	ID           string               `json:"id"`
	CycleID      string               `json:"cycle_id"`
	SectorID     string               `json:"sector_id"`
	CounterA     CounterSlot          `json:"counter_a"`
	CounterB     CounterSlot          `json:"counter_b"`
	State        SectorState          `json:"state"`
	Round        int                  `json:"round"`
	Outcome      Outcome              `json:"outcome"`
	Products     []SectorProduct      `json:"products"`
	RecountScope []string             `json:"recount_scope"`
	Details      []ProductCountDetail `json:"details"`
	Version      int64                `json:"version"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// NewSectorCount returns the unassigned placeholder a cycle creates for each
// of the company's sectors.
func NewSectorCount(id, cycleID, sectorID string, now time.Time) *SectorCount {
	return &SectorCount{
		ID:           id,
		CycleID:      cycleID,
		SectorID:     sectorID,
		State:        SectorStatePending,
		Round:        RoundCount,
		Outcome:      OutcomeNone,
		Products:     []SectorProduct{},
		RecountScope: []string{},
		Details:      []ProductCountDetail{},
		UpdatedAt:    now,
	}
}

func (sc *SectorCount) Assigned() bool {
	return sc.CounterA.CounterID != "" && sc.CounterB.CounterID != ""
}

// SlotOf returns the slot counterID occupies, if any.
func (sc *SectorCount) SlotOf(counterID string) (Slot, bool) {
	switch {
	case counterID == "":
		return "", false
	case sc.CounterA.CounterID == counterID:
		return SlotA, true
	case sc.CounterB.CounterID == counterID:
		return SlotB, true
	}
	return "", false
}

func (sc *SectorCount) Counter(slot Slot) *CounterSlot {
	if slot == SlotA {
		return &sc.CounterA
	}
	return &sc.CounterB
}

// Scope returns the product ids counted in the current round: the whole
// product set in round 1, only the mismatched products during a recount.
func (sc *SectorCount) Scope() []string {
	if sc.Round >= RoundRecount {
		return sc.RecountScope
	}
	ids := make([]string, len(sc.Products))
	for i, p := range sc.Products {
		ids[i] = p.ProductID
	}
	return ids
}

// VisibleProducts is the product list shown to the counters. While a recount
// is open only the mismatched products are listed, in scope order; a closed
// sector shows its whole product set again.
func (sc *SectorCount) VisibleProducts() []SectorProduct {
	if sc.Round < RoundRecount || sc.State.Terminal() {
		return sc.Products
	}
	out := make([]SectorProduct, 0, len(sc.RecountScope))
	for _, id := range sc.RecountScope {
		if p, ok := sc.Product(id); ok {
			out = append(out, p)
		}
	}
	return out
}

func (sc *SectorCount) InScope(productID string) bool {
	for _, id := range sc.Scope() {
		if id == productID {
			return true
		}
	}
	return false
}

func (sc *SectorCount) Product(productID string) (SectorProduct, bool) {
	for _, p := range sc.Products {
		if p.ProductID == productID {
			return p, true
		}
	}
	return SectorProduct{}, false
}

// Detail returns the tally record of productID, or nil if nobody counted it yet.
func (sc *SectorCount) Detail(productID string) *ProductCountDetail {
	for i := range sc.Details {
		if sc.Details[i].ProductID == productID {
			return &sc.Details[i]
		}
	}
	return nil
}

// Clone returns a deep copy. Mutations are applied to a clone and only the
// durable write of the clone makes them visible.
func (sc *SectorCount) Clone() *SectorCount {
	out := *sc
	out.Products = append([]SectorProduct{}, sc.Products...)
	out.RecountScope = append([]string{}, sc.RecountScope...)
	out.Details = make([]ProductCountDetail, len(sc.Details))
	for i := range sc.Details {
		out.Details[i] = sc.Details[i].Clone()
	}
	return &out
}
