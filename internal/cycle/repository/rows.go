package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stockcount-service/internal/model"
)

type cycleRow struct {
	ID          string        `db:"id"`
	CompanyID   string        `db:"company_id"`
	State       string        `db:"state"`
	CreatedAt   int64         `db:"created_at"`
	UpdatedAt   int64         `db:"updated_at"`
	FinalizedAt sql.NullInt64 `db:"finalized_at"`
	CancelledAt sql.NullInt64 `db:"cancelled_at"`
}

type sectorCountRow struct {
	ID               string `db:"id"`
	CycleID          string `db:"cycle_id"`
	SectorID         string `db:"sector_id"`
	CounterA         string `db:"counter_a"`
	CounterB         string `db:"counter_b"`
	SubStateA        string `db:"sub_state_a"`
	SubStateB        string `db:"sub_state_b"`
	ARound1Finalized bool   `db:"a_round1_finalized"`
	ARound2Finalized bool   `db:"a_round2_finalized"`
	BRound1Finalized bool   `db:"b_round1_finalized"`
	BRound2Finalized bool   `db:"b_round2_finalized"`
	State            string `db:"state"`
	Round            int    `db:"round"`
	Outcome          string `db:"outcome"`
	Products         string `db:"products"`
	RecountScope     string `db:"recount_scope"`
	Version          int64  `db:"version"`
	UpdatedAt        int64  `db:"updated_at"`
}

type detailRow struct {
	SectorCountID       string         `db:"sector_count_id"`
	ProductID           string         `db:"product_id"`
	Position            int            `db:"position"`
	SystemStock         int64          `db:"system_stock"`
	QtyA                int64          `db:"qty_a"`
	EventsA             string         `db:"events_a"`
	QtyB                int64          `db:"qty_b"`
	EventsB             string         `db:"events_b"`
	DiffVsSystem        sql.NullInt64  `db:"diff_vs_system"`
	DiffBetweenCounters sql.NullInt64  `db:"diff_between_counters"`
	State               string         `db:"state"`
	FirstRound          sql.NullString `db:"first_round"`
	Resolution          sql.NullString `db:"resolution"`
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMillis(n.Int64)
	return &t
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func toCycleRow(c *model.InventoryCycle) cycleRow {
	return cycleRow{
		ID:          c.ID,
		CompanyID:   c.CompanyID,
		State:       string(c.State),
		CreatedAt:   millis(c.CreatedAt),
		UpdatedAt:   millis(c.UpdatedAt),
		FinalizedAt: nullMillis(c.FinalizedAt),
		CancelledAt: nullMillis(c.CancelledAt),
	}
}

func (r cycleRow) model() model.InventoryCycle {
	return model.InventoryCycle{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		State:       model.CycleState(r.State),
		CreatedAt:   fromMillis(r.CreatedAt),
		UpdatedAt:   fromMillis(r.UpdatedAt),
		FinalizedAt: timePtr(r.FinalizedAt),
		CancelledAt: timePtr(r.CancelledAt),
	}
}

func toSectorCountRow(sc *model.SectorCount) (sectorCountRow, error) {
	products, err := json.Marshal(nonNil(sc.Products))
	if err != nil {
		return sectorCountRow{}, err
	}
	scope, err := json.Marshal(nonNil(sc.RecountScope))
	if err != nil {
		return sectorCountRow{}, err
	}
	return sectorCountRow{
		ID:               sc.ID,
		CycleID:          sc.CycleID,
		SectorID:         sc.SectorID,
		CounterA:         sc.CounterA.CounterID,
		CounterB:         sc.CounterB.CounterID,
		SubStateA:        string(sc.CounterA.State),
		SubStateB:        string(sc.CounterB.State),
		ARound1Finalized: sc.CounterA.Round1Finalized,
		ARound2Finalized: sc.CounterA.Round2Finalized,
		BRound1Finalized: sc.CounterB.Round1Finalized,
		BRound2Finalized: sc.CounterB.Round2Finalized,
		State:            string(sc.State),
		Round:            sc.Round,
		Outcome:          string(sc.Outcome),
		Products:         string(products),
		RecountScope:     string(scope),
		Version:          sc.Version,
		UpdatedAt:        millis(sc.UpdatedAt),
	}, nil
}

func (r sectorCountRow) model() (model.SectorCount, error) {
	sc := model.SectorCount{
		ID:       r.ID,
		CycleID:  r.CycleID,
		SectorID: r.SectorID,
		CounterA: model.CounterSlot{
			CounterID:       r.CounterA,
			State:           model.CounterState(r.SubStateA),
			Round1Finalized: r.ARound1Finalized,
			Round2Finalized: r.ARound2Finalized,
		},
		CounterB: model.CounterSlot{
			CounterID:       r.CounterB,
			State:           model.CounterState(r.SubStateB),
			Round1Finalized: r.BRound1Finalized,
			Round2Finalized: r.BRound2Finalized,
		},
		State:     model.SectorState(r.State),
		Round:     r.Round,
		Outcome:   model.Outcome(r.Outcome),
		Details:   []model.ProductCountDetail{},
		Version:   r.Version,
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
	if err := json.Unmarshal([]byte(r.Products), &sc.Products); err != nil {
		return sc, fmt.Errorf("decode products of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.RecountScope), &sc.RecountScope); err != nil {
		return sc, fmt.Errorf("decode recount scope of %s: %w", r.ID, err)
	}
	return sc, nil
}

func toDetailRow(sectorCountID string, pos int, d *model.ProductCountDetail) (detailRow, error) {
	eventsA, err := json.Marshal(nonNil(d.A.Events))
	if err != nil {
		return detailRow{}, err
	}
	eventsB, err := json.Marshal(nonNil(d.B.Events))
	if err != nil {
		return detailRow{}, err
	}
	row := detailRow{
		SectorCountID:       sectorCountID,
		ProductID:           d.ProductID,
		Position:            pos,
		SystemStock:         d.SystemStock,
		QtyA:                d.A.Quantity,
		EventsA:             string(eventsA),
		QtyB:                d.B.Quantity,
		EventsB:             string(eventsB),
		DiffVsSystem:        nullInt(d.DiffVsSystem),
		DiffBetweenCounters: nullInt(d.DiffBetweenCounters),
		State:               string(d.State),
	}
	if d.FirstRound != nil {
		b, err := json.Marshal(d.FirstRound)
		if err != nil {
			return detailRow{}, err
		}
		row.FirstRound = sql.NullString{String: string(b), Valid: true}
	}
	if d.Resolution != nil {
		b, err := json.Marshal(d.Resolution)
		if err != nil {
			return detailRow{}, err
		}
		row.Resolution = sql.NullString{String: string(b), Valid: true}
	}
	return row, nil
}

func (r detailRow) model() (model.ProductCountDetail, error) {
	d := model.ProductCountDetail{
		ProductID:           r.ProductID,
		SystemStock:         r.SystemStock,
		A:                   model.Tally{Quantity: r.QtyA},
		B:                   model.Tally{Quantity: r.QtyB},
		DiffVsSystem:        intPtr(r.DiffVsSystem),
		DiffBetweenCounters: intPtr(r.DiffBetweenCounters),
		State:               model.ProductState(r.State),
	}
	if err := json.Unmarshal([]byte(r.EventsA), &d.A.Events); err != nil {
		return d, err
	}
	if err := json.Unmarshal([]byte(r.EventsB), &d.B.Events); err != nil {
		return d, err
	}
	if r.FirstRound.Valid {
		d.FirstRound = &model.RoundReference{}
		if err := json.Unmarshal([]byte(r.FirstRound.String), d.FirstRound); err != nil {
			return d, err
		}
	}
	if r.Resolution.Valid {
		d.Resolution = &model.Resolution{}
		if err := json.Unmarshal([]byte(r.Resolution.String), d.Resolution); err != nil {
			return d, err
		}
	}
	return d, nil
}

// nonNil keeps empty collections encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
