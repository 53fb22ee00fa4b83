package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
	"github.com/fekuna/omnipos-stockcount-service/internal/model"
	"github.com/jmoiron/sqlx"
)

// ErrVersionConflict is returned when a sector count changed between load
// and save. Callers hold the sector lock, so this only happens if the lock
// expired mid-operation.
var ErrVersionConflict = errors.New("sector count was modified concurrently")

const (
	cycleColumns = `id, company_id, state, created_at, updated_at, finalized_at, cancelled_at`

	sectorCountColumns = `id, cycle_id, sector_id, counter_a, counter_b, sub_state_a, sub_state_b,
            a_round1_finalized, a_round2_finalized, b_round1_finalized, b_round2_finalized,
            state, round, outcome, products, recount_scope, version, updated_at`

	detailColumns = `sector_count_id, product_id, position, system_stock, qty_a, events_a, qty_b, events_b,
            diff_vs_system, diff_between_counters, state, first_round, resolution`
)

// SQLRepository works on Postgres (pgx) and SQLite (modernc) alike; queries
// are written with ? and rebound for the driver.
type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) CreateCycle(ctx context.Context, c *model.InventoryCycle, counts []*model.SectorCount) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing []string
	if err := tx.SelectContext(ctx, &existing,
		tx.Rebind(`SELECT id FROM inventory_cycles WHERE company_id = ? AND state = ?`),
		c.CompanyID, string(model.CycleStateInProgress)); err != nil {
		return fmt.Errorf("failed to check active cycle: %w", err)
	}
	if len(existing) > 0 {
		return apperr.New(apperr.CodeCycleAlreadyActive, existing[0])
	}

	if _, err := tx.NamedExecContext(ctx, `
        INSERT INTO inventory_cycles (`+cycleColumns+`)
        VALUES (:id, :company_id, :state, :created_at, :updated_at, :finalized_at, :cancelled_at)
    `, toCycleRow(c)); err != nil {
		return fmt.Errorf("failed to insert cycle: %w", err)
	}

	for _, sc := range counts {
		row, err := toSectorCountRow(sc)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, `
            INSERT INTO sector_counts (`+sectorCountColumns+`)
            VALUES (:id, :cycle_id, :sector_id, :counter_a, :counter_b, :sub_state_a, :sub_state_b,
                :a_round1_finalized, :a_round2_finalized, :b_round1_finalized, :b_round2_finalized,
                :state, :round, :outcome, :products, :recount_scope, :version, :updated_at)
        `, row); err != nil {
			return fmt.Errorf("failed to insert sector count %s: %w", sc.SectorID, err)
		}
	}

	return tx.Commit()
}

func (r *SQLRepository) GetCycle(ctx context.Context, cycleID string) (*model.InventoryCycle, error) {
	var row cycleRow
	err := r.DB.GetContext(ctx, &row,
		r.DB.Rebind(`SELECT `+cycleColumns+` FROM inventory_cycles WHERE id = ?`), cycleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "cycle "+cycleID)
		}
		return nil, err
	}
	c := row.model()
	return &c, nil
}

func (r *SQLRepository) GetActiveCycle(ctx context.Context, companyID string) (*model.InventoryCycle, error) {
	var row cycleRow
	err := r.DB.GetContext(ctx, &row,
		r.DB.Rebind(`SELECT `+cycleColumns+` FROM inventory_cycles WHERE company_id = ? AND state = ?`),
		companyID, string(model.CycleStateInProgress))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c := row.model()
	return &c, nil
}

func (r *SQLRepository) ListActiveCycles(ctx context.Context) ([]model.InventoryCycle, error) {
	var rows []cycleRow
	err := r.DB.SelectContext(ctx, &rows,
		r.DB.Rebind(`SELECT `+cycleColumns+` FROM inventory_cycles WHERE state = ? ORDER BY company_id`),
		string(model.CycleStateInProgress))
	if err != nil {
		return nil, err
	}
	out := make([]model.InventoryCycle, len(rows))
	for i, row := range rows {
		out[i] = row.model()
	}
	return out, nil
}

func (r *SQLRepository) GetSectorCount(ctx context.Context, cycleID, sectorID string) (*model.SectorCount, error) {
	var row sectorCountRow
	err := r.DB.GetContext(ctx, &row,
		r.DB.Rebind(`SELECT `+sectorCountColumns+` FROM sector_counts WHERE cycle_id = ? AND sector_id = ?`),
		cycleID, sectorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "sector "+sectorID)
		}
		return nil, err
	}
	sc, err := row.model()
	if err != nil {
		return nil, err
	}

	var details []detailRow
	if err := r.DB.SelectContext(ctx, &details,
		r.DB.Rebind(`SELECT `+detailColumns+` FROM product_count_details WHERE sector_count_id = ? ORDER BY position`),
		sc.ID); err != nil {
		return nil, fmt.Errorf("failed to load details: %w", err)
	}
	for _, d := range details {
		detail, err := d.model()
		if err != nil {
			return nil, fmt.Errorf("decode detail %s/%s: %w", sc.ID, d.ProductID, err)
		}
		sc.Details = append(sc.Details, detail)
	}
	return &sc, nil
}

func (r *SQLRepository) ListSectorCounts(ctx context.Context, cycleID string) ([]model.SectorCount, error) {
	var rows []sectorCountRow
	if err := r.DB.SelectContext(ctx, &rows,
		r.DB.Rebind(`SELECT `+sectorCountColumns+` FROM sector_counts WHERE cycle_id = ? ORDER BY sector_id`),
		cycleID); err != nil {
		return nil, err
	}

	var details []detailRow
	if err := r.DB.SelectContext(ctx, &details, r.DB.Rebind(`
        SELECT `+detailColumns+` FROM product_count_details
        WHERE sector_count_id IN (SELECT id FROM sector_counts WHERE cycle_id = ?)
        ORDER BY sector_count_id, position
    `), cycleID); err != nil {
		return nil, fmt.Errorf("failed to load details: %w", err)
	}
	bySector := make(map[string][]model.ProductCountDetail)
	for _, d := range details {
		detail, err := d.model()
		if err != nil {
			return nil, fmt.Errorf("decode detail %s/%s: %w", d.SectorCountID, d.ProductID, err)
		}
		bySector[d.SectorCountID] = append(bySector[d.SectorCountID], detail)
	}

	out := make([]model.SectorCount, 0, len(rows))
	for _, row := range rows {
		sc, err := row.model()
		if err != nil {
			return nil, err
		}
		if ds, ok := bySector[sc.ID]; ok {
			sc.Details = ds
		}
		out = append(out, sc)
	}
	return out, nil
}

func (r *SQLRepository) SaveSectorCounts(ctx context.Context, c *model.InventoryCycle, counts ...*model.SectorCount) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if c != nil {
		if _, err := tx.NamedExecContext(ctx, `
            UPDATE inventory_cycles SET
                state = :state,
                updated_at = :updated_at,
                finalized_at = :finalized_at,
                cancelled_at = :cancelled_at
            WHERE id = :id
        `, toCycleRow(c)); err != nil {
			return fmt.Errorf("failed to update cycle: %w", err)
		}
	}

	for _, sc := range counts {
		if err := saveSectorCount(ctx, tx, sc); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	for _, sc := range counts {
		sc.Version++
	}
	return nil
}

func saveSectorCount(ctx context.Context, tx *sqlx.Tx, sc *model.SectorCount) error {
	row, err := toSectorCountRow(sc)
	if err != nil {
		return err
	}
	res, err := tx.NamedExecContext(ctx, `
        UPDATE sector_counts SET
            counter_a = :counter_a,
            counter_b = :counter_b,
            sub_state_a = :sub_state_a,
            sub_state_b = :sub_state_b,
            a_round1_finalized = :a_round1_finalized,
            a_round2_finalized = :a_round2_finalized,
            b_round1_finalized = :b_round1_finalized,
            b_round2_finalized = :b_round2_finalized,
            state = :state,
            round = :round,
            outcome = :outcome,
            products = :products,
            recount_scope = :recount_scope,
            version = :version + 1,
            updated_at = :updated_at
        WHERE id = :id AND version = :version
    `, row)
	if err != nil {
		return fmt.Errorf("failed to update sector count %s: %w", sc.SectorID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n != 1 {
		return fmt.Errorf("sector %s: %w", sc.SectorID, ErrVersionConflict)
	}

	if _, err := tx.ExecContext(ctx,
		tx.Rebind(`DELETE FROM product_count_details WHERE sector_count_id = ?`), sc.ID); err != nil {
		return fmt.Errorf("failed to clear details of %s: %w", sc.SectorID, err)
	}
	for i := range sc.Details {
		d, err := toDetailRow(sc.ID, i, &sc.Details[i])
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, `
            INSERT INTO product_count_details (`+detailColumns+`)
            VALUES (:sector_count_id, :product_id, :position, :system_stock, :qty_a, :events_a, :qty_b, :events_b,
                :diff_vs_system, :diff_between_counters, :state, :first_round, :resolution)
        `, d); err != nil {
			return fmt.Errorf("failed to write detail %s/%s: %w", sc.SectorID, d.ProductID, err)
		}
	}
	return nil
}
