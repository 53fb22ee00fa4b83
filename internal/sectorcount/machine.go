// Package sectorcount drives one sector's count through the two-counter
// protocol: assignment, the first round, the comparison, at most one
// recount round over the mismatched products and, if the recount still
// disagrees, administrator resolution.
//
// A Machine mutates the SectorCount it wraps in place; callers hand it a
// clone and persist the clone only when the operation succeeded. Every
// operation validates before it writes, so a failed call leaves the sector
// untouched.
package sectorcount

import (
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
	"github.com/fekuna/omnipos-stockcount-service/internal/expression"
	"github.com/fekuna/omnipos-stockcount-service/internal/ledger"
	"github.com/fekuna/omnipos-stockcount-service/internal/model"
)

type Machine struct {
	sc      *model.SectorCount
	policy  ledger.StockPolicy
	now     func() time.Time
	visited []model.SectorState
}

func New(sc *model.SectorCount, policy ledger.StockPolicy, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	if policy == "" {
		policy = ledger.StockPolicyCounterA
	}
	return &Machine{sc: sc, policy: policy, now: now}
}

func (m *Machine) SectorCount() *model.SectorCount { return m.sc }

// Visited returns the overall states entered so far, in order.
func (m *Machine) Visited() []model.SectorState { return m.visited }

// transition is the only writer of the overall state.
func (m *Machine) transition() {
	next := model.DeriveState(m.sc)
	if next != m.sc.State {
		m.sc.State = next
		m.visited = append(m.visited, next)
	}
	m.sc.UpdatedAt = m.now()
}

// Assign attaches the two counters. The product set and its book stock are
// captured on the first assignment; a later re-assignment swaps identities
// but keeps everything already counted.
func (m *Machine) Assign(counterA, counterB string, products []model.SectorProduct) error {
	counterA, counterB = strings.TrimSpace(counterA), strings.TrimSpace(counterB)
	if counterA == "" || counterB == "" {
		return apperr.New(apperr.CodeInvalidAssignment, "two counters are required")
	}
	if counterA == counterB {
		return apperr.New(apperr.CodeInvalidAssignment, "counters must be different")
	}
	if m.sc.State.Terminal() {
		return apperr.New(apperr.CodeSectorClosed, string(m.sc.State))
	}

	if !m.sc.Assigned() {
		m.sc.Products = append([]model.SectorProduct{}, products...)
		m.sc.CounterA.State = model.CounterStatePending
		m.sc.CounterB.State = model.CounterStatePending
	}
	m.sc.CounterA.CounterID = counterA
	m.sc.CounterB.CounterID = counterB
	m.transition()
	return nil
}

// slotFor resolves counterID for an operation in round (0 = current round).
func (m *Machine) slotFor(counterID string, round int) (model.Slot, error) {
	if m.sc.State.Terminal() {
		return "", apperr.New(apperr.CodeSectorClosed, string(m.sc.State))
	}
	slot, ok := m.sc.SlotOf(counterID)
	if !ok {
		return "", apperr.New(apperr.CodeNotAssigned, counterID)
	}
	if round != 0 && round != m.sc.Round {
		return "", apperr.New(apperr.CodeWrongRound)
	}
	if !m.sc.Counter(slot).State.Open() {
		return "", apperr.New(apperr.CodeRoundClosed)
	}
	return slot, nil
}

// Submit logs one count expression of counterID for productID.
func (m *Machine) Submit(counterID, productID, text string, round int) (*model.ProductCountDetail, error) {
	slot, err := m.slotFor(counterID, round)
	if err != nil {
		return nil, err
	}
	d, err := ledger.Append(m.sc, slot, productID, text, m.now())
	if err != nil {
		return nil, err
	}
	if c := m.sc.Counter(slot); c.State == model.CounterStatePending {
		c.State = model.CounterStateInProgress
	}
	m.transition()
	return d, nil
}

// Finalize closes the current round for counterID. The second counter to
// finalize triggers the comparison.
func (m *Machine) Finalize(counterID string, round int) error {
	slot, err := m.slotFor(counterID, round)
	if err != nil {
		return err
	}
	if missing := ledger.Missing(m.sc, slot); len(missing) > 0 {
		return apperr.New(apperr.CodeIncompleteCount, missing...)
	}

	c, peer := m.sc.Counter(slot), m.sc.Counter(slot.Peer())
	if m.sc.Round < model.RoundRecount {
		c.Round1Finalized = true
		c.State = model.CounterStateWaitingForPeer
		m.transition()
		if peer.Round1Finalized {
			m.compareFirstRound()
		}
		return nil
	}

	c.Round2Finalized = true
	if !peer.Round2Finalized {
		c.State = model.CounterStateWaitingForPeerRecount
		m.transition()
		return nil
	}
	c.State = model.CounterStateComparingRecount
	peer.State = model.CounterStateComparingRecount
	m.transition()
	m.compareRecount()
	return nil
}

func (m *Machine) compare(scope []string) []string {
	var mismatched []string
	for _, id := range scope {
		d := m.sc.Detail(id)
		if d == nil {
			continue
		}
		ledger.ComputeDiscrepancy(d, m.policy)
		if d.State == model.ProductStateDifference {
			mismatched = append(mismatched, id)
		}
	}
	return mismatched
}

func (m *Machine) compareFirstRound() {
	mismatched := m.compare(m.sc.Scope())
	if len(mismatched) == 0 {
		m.sc.Outcome = model.OutcomeReconciled
		m.transition()
		return
	}
	m.sc.Outcome = model.OutcomeDifferences
	m.sc.Round = model.RoundRecount
	m.sc.RecountScope = mismatched
	ledger.OpenRecount(m.sc, mismatched)
	m.sc.CounterA.State = model.CounterStatePending
	m.sc.CounterB.State = model.CounterStatePending
	m.transition()
}

// compareRecount runs once per sector. Products still disagreeing after the
// recount need an administrator; no further round is opened.
func (m *Machine) compareRecount() {
	if len(m.compare(m.sc.RecountScope)) == 0 {
		m.sc.Outcome = model.OutcomeReconciled
	} else {
		m.sc.Outcome = model.OutcomeEscalated
	}
	m.transition()
}

// Pending lists the products an administrator still has to resolve.
func (m *Machine) Pending() []string {
	if m.sc.Outcome != model.OutcomeEscalated {
		return nil
	}
	var ids []string
	for _, id := range m.sc.RecountScope {
		if d := m.sc.Detail(id); d != nil && d.State == model.ProductStateDifference {
			ids = append(ids, id)
		}
	}
	return ids
}

// Resolve accepts an administrator's expression for every product left in
// DIFFERENCE after the recount and completes the sector.
func (m *Machine) Resolve(resolvedBy string, resolutions map[string]string) error {
	if m.sc.State.Terminal() {
		return apperr.New(apperr.CodeSectorClosed, string(m.sc.State))
	}
	if m.sc.Outcome != model.OutcomeEscalated {
		return apperr.New(apperr.CodeWrongRound, "sector has no escalated differences")
	}

	pending := m.Pending()
	var missing []string
	for _, id := range pending {
		if _, ok := resolutions[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return apperr.New(apperr.CodeIncompleteCount, missing...)
	}
	var extra []string
	for id := range resolutions {
		if !contains(pending, id) {
			extra = append(extra, id)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return apperr.New(apperr.CodeProductNotInScope, extra...)
	}
	for _, id := range pending {
		if _, err := expression.Evaluate(resolutions[id]); err != nil {
			return err
		}
	}

	at := m.now()
	for _, id := range pending {
		if err := ledger.Resolve(m.sc.Detail(id), resolutions[id], resolvedBy, at); err != nil {
			return err
		}
	}
	m.sc.Outcome = model.OutcomeReconciled
	m.transition()
	return nil
}

// Cancel ends the sector's count. Assignment and counts are dropped from the
// active view.
func (m *Machine) Cancel() error {
	if m.sc.State.Terminal() {
		return apperr.New(apperr.CodeSectorClosed, string(m.sc.State))
	}
	m.sc.Outcome = model.OutcomeCancelled
	m.sc.CounterA = model.CounterSlot{}
	m.sc.CounterB = model.CounterSlot{}
	m.sc.RecountScope = []string{}
	m.sc.Details = []model.ProductCountDetail{}
	m.transition()
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
