package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-stockcount-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) ListSectors(ctx context.Context, companyID string) ([]model.Sector, error) {
	sectors := []model.Sector{}
	query := r.DB.Rebind(`
        SELECT id, company_id, code, name, sort_order, is_active
        FROM sectors
        WHERE company_id = ? AND is_active = ?
        ORDER BY sort_order, code, id
    `)
	if err := r.DB.SelectContext(ctx, &sectors, query, companyID, true); err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	return sectors, nil
}

func (r *SQLRepository) GetSector(ctx context.Context, companyID, sectorID string) (*model.Sector, error) {
	var s model.Sector
	query := r.DB.Rebind(`
        SELECT id, company_id, code, name, sort_order, is_active
        FROM sectors
        WHERE company_id = ? AND id = ?
    `)
	err := r.DB.GetContext(ctx, &s, query, companyID, sectorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SQLRepository) ListSectorProducts(ctx context.Context, sectorIDs []string) (map[string][]model.SectorProduct, error) {
	out := make(map[string][]model.SectorProduct, len(sectorIDs))
	if len(sectorIDs) == 0 {
		return out, nil
	}
	for _, id := range sectorIDs {
		out[id] = []model.SectorProduct{}
	}

	query, args, err := sqlx.In(`
        SELECT sector_id, product_id, quantity
        FROM stock_levels
        WHERE sector_id IN (?)
        ORDER BY sector_id, product_id
    `, sectorIDs)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var levels []model.StockLevel
	if err := r.DB.SelectContext(ctx, &levels, query, args...); err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	for _, l := range levels {
		out[l.SectorID] = append(out[l.SectorID], model.SectorProduct{
			ProductID:   l.ProductID,
			SystemStock: l.Quantity,
		})
	}
	return out, nil
}

func (r *SQLRepository) UpsertSector(ctx context.Context, s *model.Sector) error {
	query := `
        INSERT INTO sectors (id, company_id, code, name, sort_order, is_active)
        VALUES (:id, :company_id, :code, :name, :sort_order, :is_active)
        ON CONFLICT (id) DO UPDATE SET
            code = EXCLUDED.code,
            name = EXCLUDED.name,
            sort_order = EXCLUDED.sort_order,
            is_active = EXCLUDED.is_active
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return err
}

func (r *SQLRepository) UpsertStock(ctx context.Context, levels []model.StockLevel) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO stock_levels (sector_id, product_id, quantity)
        VALUES (:sector_id, :product_id, :quantity)
        ON CONFLICT (sector_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
    `
	for i := range levels {
		if _, err := tx.NamedExecContext(ctx, query, &levels[i]); err != nil {
			return fmt.Errorf("failed to upsert stock %s/%s: %w", levels[i].SectorID, levels[i].ProductID, err)
		}
	}
	return tx.Commit()
}
