package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Statements are portable between Postgres and SQLite. Timestamps are unix
// milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sectors (
		id         TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		code       TEXT NOT NULL,
		name       TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS ix_sectors_company ON sectors (company_id)`,
	`CREATE TABLE IF NOT EXISTS stock_levels (
		sector_id  TEXT NOT NULL,
		product_id TEXT NOT NULL,
		quantity   BIGINT NOT NULL,
		PRIMARY KEY (sector_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_cycles (
		id           TEXT PRIMARY KEY,
		company_id   TEXT NOT NULL,
		state        TEXT NOT NULL,
		created_at   BIGINT NOT NULL,
		updated_at   BIGINT NOT NULL,
		finalized_at BIGINT,
		cancelled_at BIGINT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_inventory_cycles_active
		ON inventory_cycles (company_id) WHERE state = 'IN_PROGRESS'`,
	`CREATE TABLE IF NOT EXISTS sector_counts (
		id                 TEXT PRIMARY KEY,
		cycle_id           TEXT NOT NULL,
		sector_id          TEXT NOT NULL,
		counter_a          TEXT NOT NULL DEFAULT '',
		counter_b          TEXT NOT NULL DEFAULT '',
		sub_state_a        TEXT NOT NULL DEFAULT '',
		sub_state_b        TEXT NOT NULL DEFAULT '',
		a_round1_finalized BOOLEAN NOT NULL DEFAULT FALSE,
		a_round2_finalized BOOLEAN NOT NULL DEFAULT FALSE,
		b_round1_finalized BOOLEAN NOT NULL DEFAULT FALSE,
		b_round2_finalized BOOLEAN NOT NULL DEFAULT FALSE,
		state              TEXT NOT NULL,
		round              INTEGER NOT NULL,
		outcome            TEXT NOT NULL,
		products           TEXT NOT NULL,
		recount_scope      TEXT NOT NULL,
		version            BIGINT NOT NULL,
		updated_at         BIGINT NOT NULL,
		UNIQUE (cycle_id, sector_id)
	)`,
	`CREATE TABLE IF NOT EXISTS product_count_details (
		sector_count_id       TEXT NOT NULL,
		product_id            TEXT NOT NULL,
		position              INTEGER NOT NULL,
		system_stock          BIGINT NOT NULL,
		qty_a                 BIGINT NOT NULL,
		events_a              TEXT NOT NULL,
		qty_b                 BIGINT NOT NULL,
		events_b              TEXT NOT NULL,
		diff_vs_system        BIGINT,
		diff_between_counters BIGINT,
		state                 TEXT NOT NULL,
		first_round           TEXT,
		resolution            TEXT,
		PRIMARY KEY (sector_count_id, product_id)
	)`,
}

func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}
