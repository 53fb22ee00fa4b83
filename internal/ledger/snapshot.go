package ledger

import (
	"github.com/fekuna/omnipos-stockcount-service/internal/expression"
	"github.com/fekuna/omnipos-stockcount-service/internal/model"
)

// TallySnapshot is a read-only view of one counter's tally for a product.
// Terms holds the additive terms of each logged expression that are valid
// counts on their own, so a peer can reuse one of them verbatim.
type TallySnapshot struct {
	ProductID string     `json:"product_id"`
	Slot      model.Slot `json:"slot"`
	CounterID string     `json:"counter_id"`
	Quantity  int64      `json:"quantity"`
	Events    []string   `json:"events"`
	Terms     [][]string `json:"terms"`
}

func Snapshot(sc *model.SectorCount, slot model.Slot, productID string) TallySnapshot {
	s := TallySnapshot{
		ProductID: productID,
		Slot:      slot,
		CounterID: sc.Counter(slot).CounterID,
		Events:    []string{},
		Terms:     [][]string{},
	}
	d := sc.Detail(productID)
	if d == nil {
		return s
	}
	t := d.Tally(slot)
	s.Quantity = t.Quantity
	s.Events = t.Expressions()
	for _, expr := range s.Events {
		// Stored expressions were evaluated on the way in.
		terms, _ := expression.DecomposeBySum(expr)
		s.Terms = append(s.Terms, reusable(terms))
	}
	return s
}

// reusable drops terms such as "2-3" that only make sense next to the rest
// of their expression.
func reusable(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, err := expression.Evaluate(t); err == nil {
			out = append(out, t)
		}
	}
	return out
}
