// Package ledger keeps the per-product tallies of a sector count: every
// formula a counter logs, the derived quantities and their comparison with
// the peer and with the book stock.
package ledger

import (
	"strings"
	"time"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
	"github.com/fekuna/omnipos-stockcount-service/internal/expression"
	"github.com/fekuna/omnipos-stockcount-service/internal/model"
)

// Append evaluates text and appends it to the slot's tally of productID in
// the current round. The detail is created on the first submission for the
// product. Nothing is modified when an error is returned.
func Append(sc *model.SectorCount, slot model.Slot, productID, text string, at time.Time) (*model.ProductCountDetail, error) {
	if sc.Counter(slot).Finalized(sc.Round) {
		return nil, apperr.New(apperr.CodeRoundClosed)
	}
	if !sc.InScope(productID) {
		return nil, apperr.New(apperr.CodeProductNotInScope, productID)
	}
	qty, err := expression.Evaluate(text)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = "0"
	}

	d := sc.Detail(productID)
	if d == nil {
		p, _ := sc.Product(productID)
		sc.Details = append(sc.Details, model.ProductCountDetail{
			ProductID:   productID,
			SystemStock: p.SystemStock,
			State:       model.ProductStateCounting,
		})
		d = &sc.Details[len(sc.Details)-1]
	}

	t := d.Tally(slot)
	t.Events = append(t.Events, model.CountEvent{Quantity: qty, Expression: text, At: at})
	t.Quantity = 0
	for _, e := range t.Events {
		t.Quantity += e.Quantity
	}
	d.State = progress(d)
	return d, nil
}

func progress(d *model.ProductCountDetail) model.ProductState {
	if d.A.Counted() != d.B.Counted() {
		return model.ProductStateAwaitingPeer
	}
	return model.ProductStateCounting
}

// Counted reports whether slot logged at least one event for productID in
// the current round.
func Counted(sc *model.SectorCount, slot model.Slot, productID string) bool {
	d := sc.Detail(productID)
	return d != nil && d.Tally(slot).Counted()
}

// Missing lists the in-scope products slot has not counted yet, in product
// set order.
func Missing(sc *model.SectorCount, slot model.Slot) []string {
	var missing []string
	for _, id := range sc.Scope() {
		if !Counted(sc, slot, id) {
			missing = append(missing, id)
		}
	}
	return missing
}

// ComputeDiscrepancy compares both counters once each has a quantity. A
// product counted by only one side is left AWAITING_PEER and reported as not
// compared.
func ComputeDiscrepancy(d *model.ProductCountDetail, policy StockPolicy) bool {
	if !d.A.Counted() || !d.B.Counted() {
		d.State = progress(d)
		return false
	}
	between := d.A.Quantity - d.B.Quantity
	vsSystem := policy.quantity(d) - d.SystemStock
	d.DiffBetweenCounters = &between
	d.DiffVsSystem = &vsSystem
	if between == 0 {
		d.State = model.ProductStateReconciled
	} else {
		d.State = model.ProductStateDifference
	}
	return true
}

// OpenRecount moves the first-round tallies of the given products into their
// round reference and starts empty tallies for the recount.
func OpenRecount(sc *model.SectorCount, productIDs []string) {
	for _, id := range productIDs {
		d := sc.Detail(id)
		if d == nil {
			continue
		}
		ref := &model.RoundReference{A: d.A, B: d.B}
		if d.DiffBetweenCounters != nil {
			ref.DiffBetweenCounters = *d.DiffBetweenCounters
		}
		if d.DiffVsSystem != nil {
			ref.DiffVsSystem = *d.DiffVsSystem
		}
		d.FirstRound = ref
		d.A = model.Tally{Events: []model.CountEvent{}}
		d.B = model.Tally{Events: []model.CountEvent{}}
		d.DiffBetweenCounters = nil
		d.DiffVsSystem = nil
		d.State = model.ProductStateCounting
	}
}

// Resolve records the quantity an administrator accepted for a product that
// is still in DIFFERENCE and marks it reconciled.
func Resolve(d *model.ProductCountDetail, text, resolvedBy string, at time.Time) error {
	qty, err := expression.Evaluate(text)
	if err != nil {
		return err
	}
	vsSystem := qty - d.SystemStock
	d.Resolution = &model.Resolution{
		Expression: strings.TrimSpace(text),
		Quantity:   qty,
		ResolvedBy: resolvedBy,
		At:         at,
	}
	d.DiffVsSystem = &vsSystem
	d.State = model.ProductStateReconciled
	return nil
}
