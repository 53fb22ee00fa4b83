package model

import "time"

// CountEvent is one formula a counter logged for a product.
type CountEvent struct {
	Quantity   int64     `json:"quantity"`
	Expression string    `json:"expression"`
	At         time.Time `json:"at"`
}

// Tally is a counter's CountExpression for a product in one round: the
// ordered events and their summed quantity.
type Tally struct {
	Events   []CountEvent `json:"events"`
	Quantity int64        `json:"quantity"`
}

func (t *Tally) Counted() bool { return len(t.Events) > 0 }

func (t *Tally) Expressions() []string {
	out := make([]string, len(t.Events))
	for i, e := range t.Events {
		out[i] = e.Expression
	}
	return out
}

func (t Tally) clone() Tally {
	return Tally{Events: append([]CountEvent{}, t.Events...), Quantity: t.Quantity}
}

// RoundReference keeps a product's first-round tallies once it enters a
// recount, for read-only display next to the new round.
type RoundReference struct {
	A                   Tally `json:"a"`
	B                   Tally `json:"b"`
	DiffBetweenCounters int64 `json:"diff_between_counters"`
	DiffVsSystem        int64 `json:"diff_vs_system"`
}

// Resolution is the quantity an administrator accepted for a product whose
// recount still disagreed.
type Resolution struct {
	Expression string    `json:"expression"`
	Quantity   int64     `json:"quantity"`
	ResolvedBy string    `json:"resolved_by"`
	At         time.Time `json:"at"`
}

type ProductCountDetail struct {
	ProductID           string          `json:"product_id"`
	SystemStock         int64           `json:"system_stock"`
	A                   Tally           `json:"a"`
	B                   Tally           `json:"b"`
	DiffVsSystem        *int64          `json:"diff_vs_system,omitempty"`
	DiffBetweenCounters *int64          `json:"diff_between_counters,omitempty"`
	State               ProductState    `json:"state"`
	FirstRound          *RoundReference `json:"first_round,omitempty"`
	Resolution          *Resolution     `json:"resolution,omitempty"`
}

func (d *ProductCountDetail) Tally(slot Slot) *Tally {
	if slot == SlotA {
		return &d.A
	}
	return &d.B
}

// FinalQuantity is the agreed quantity of a reconciled product.
func (d *ProductCountDetail) FinalQuantity() (int64, bool) {
	if d.State != ProductStateReconciled {
		return 0, false
	}
	if d.Resolution != nil {
		return d.Resolution.Quantity, true
	}
	return d.A.Quantity, true
}

func (d ProductCountDetail) Clone() ProductCountDetail {
	out := d
	out.A = d.A.clone()
	out.B = d.B.clone()
	if d.DiffVsSystem != nil {
		v := *d.DiffVsSystem
		out.DiffVsSystem = &v
	}
	if d.DiffBetweenCounters != nil {
		v := *d.DiffBetweenCounters
		out.DiffBetweenCounters = &v
	}
	if d.FirstRound != nil {
		ref := *d.FirstRound
		ref.A = d.FirstRound.A.clone()
		ref.B = d.FirstRound.B.clone()
		out.FirstRound = &ref
	}
	if d.Resolution != nil {
		res := *d.Resolution
		out.Resolution = &res
	}
	return out
}
