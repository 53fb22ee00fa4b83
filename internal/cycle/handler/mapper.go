package handler

import (
	countv1 "github.com/fekuna/omnipos-stockcount-service/api/countv1"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/model"
	"github.com/fekuna/omnipos-stockcount-service/internal/notify"
)

func mapRollup(r model.Rollup) countv1.Rollup {
	return countv1.Rollup{
		TotalSectors:      r.TotalSectors,
		CompletedSectors:  r.CompletedSectors,
		InProgressSectors: r.InProgressSectors,
		PendingSectors:    r.PendingSectors,
		CancelledSectors:  r.CancelledSectors,
		PercentComplete:   r.PercentComplete,
	}
}

func mapCycle(s *dto.CycleSnapshot) *countv1.CycleResponse {
	out := &countv1.CycleResponse{
		Cycle: countv1.Cycle{
			ID:          s.Cycle.ID,
			CompanyID:   s.Cycle.CompanyID,
			State:       string(s.Cycle.State),
			CreatedAt:   s.Cycle.CreatedAt,
			UpdatedAt:   s.Cycle.UpdatedAt,
			FinalizedAt: s.Cycle.FinalizedAt,
			CancelledAt: s.Cycle.CancelledAt,
		},
		Rollup:  mapRollup(s.Rollup),
		Sectors: make([]countv1.SectorSummary, len(s.Sectors)),
	}
	for i, sec := range s.Sectors {
		out.Sectors[i] = countv1.SectorSummary{
			SectorID: sec.SectorID,
			State:    string(sec.State),
			Round:    int32(sec.Round),
			CounterA: sec.CounterA,
			CounterB: sec.CounterB,
		}
	}
	return out
}

// mapProductLine renders a product whether or not anyone counted it yet.
func mapProductLine(sc *model.SectorCount, p model.SectorProduct) countv1.ProductLine {
	line := countv1.ProductLine{
		ProductID:   p.ProductID,
		SystemStock: p.SystemStock,
		ExprA:       []string{},
		ExprB:       []string{},
		State:       string(model.ProductStateCounting),
		InRecount:   sc.Round >= model.RoundRecount && sc.InScope(p.ProductID),
	}
	d := sc.Detail(p.ProductID)
	if d == nil {
		return line
	}
	fillDetail(&line, d)
	return line
}

func fillDetail(line *countv1.ProductLine, d *model.ProductCountDetail) {
	line.QtyA = d.A.Quantity
	line.ExprA = d.A.Expressions()
	line.QtyB = d.B.Quantity
	line.ExprB = d.B.Expressions()
	line.DiffVsSystem = d.DiffVsSystem
	line.DiffBetweenCounters = d.DiffBetweenCounters
	line.State = string(d.State)
	if d.Resolution != nil {
		line.ResolvedBy = d.Resolution.ResolvedBy
	}
}

func mapSectorCount(s *dto.SectorCountSnapshot) *countv1.SectorCountResponse {
	sc := &s.SectorCount
	round := sc.Round
	out := countv1.SectorCount{
		ID:              sc.ID,
		CycleID:         sc.CycleID,
		SectorID:        sc.SectorID,
		CounterA:        sc.CounterA.CounterID,
		CounterB:        sc.CounterB.CounterID,
		State:           string(sc.State),
		SubStateA:       string(sc.CounterA.State),
		SubStateB:       string(sc.CounterB.State),
		RoundAFinalized: sc.CounterA.Finalized(round),
		RoundBFinalized: sc.CounterB.Finalized(round),
		Round:           int32(round),
		UpdatedAt:       sc.UpdatedAt,
	}
	visible := sc.VisibleProducts()
	out.Products = make([]countv1.ProductLine, len(visible))
	for i, p := range visible {
		out.Products[i] = mapProductLine(sc, p)
	}
	return &countv1.SectorCountResponse{SectorCount: out, Rollup: mapRollup(s.Rollup)}
}

func mapProductCount(s *dto.ProductCountSnapshot) *countv1.ProductCountResponse {
	line := countv1.ProductLine{
		ProductID:   s.Detail.ProductID,
		SystemStock: s.Detail.SystemStock,
		InRecount:   s.Round >= model.RoundRecount,
	}
	fillDetail(&line, &s.Detail)
	return &countv1.ProductCountResponse{
		CycleID:     s.CycleID,
		SectorID:    s.SectorID,
		SectorState: string(s.SectorState),
		Round:       int32(s.Round),
		Product:     line,
		Rollup:      mapRollup(s.Rollup),
	}
}

func mapRecountReference(items []dto.RecountReference) *countv1.RecountReferenceResponse {
	out := &countv1.RecountReferenceResponse{Items: make([]countv1.RecountItem, len(items))}
	for i, it := range items {
		out.Items[i] = countv1.RecountItem{
			ProductID:           it.ProductID,
			SystemStock:         it.SystemStock,
			CounterA:            it.CounterA,
			QtyA:                it.A.Quantity,
			ExprA:               it.A.Expressions(),
			CounterB:            it.CounterB,
			QtyB:                it.B.Quantity,
			ExprB:               it.B.Expressions(),
			DiffBetweenCounters: it.DiffBetweenCounters,
			DiffVsSystem:        it.DiffVsSystem,
		}
	}
	return out
}

func mapEvent(ev notify.Event) *countv1.CycleEvent {
	return &countv1.CycleEvent{
		EventID:  ev.ID,
		Kind:     string(ev.Kind),
		CycleID:  ev.CycleID,
		SectorID: ev.SectorID,
		State:    string(ev.State),
		Round:    int32(ev.Round),
		Rollup:   mapRollup(ev.Rollup),
		At:       ev.At,
	}
}
