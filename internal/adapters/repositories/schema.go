package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// InitSchema creates the reference and dwell tables if they do not exist.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPackagesQuery := `
	CREATE TABLE IF NOT EXISTS packages (
		order_id TEXT PRIMARY KEY,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	);
	`

	// corridor_cage is not unique: the allocation engine dedupes.
	createLanesQuery := `
	CREATE TABLE IF NOT EXISTS lanes (
		id BIGSERIAL PRIMARY KEY,
		corridor_cage TEXT NOT NULL,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		license_plate TEXT NOT NULL DEFAULT '',
		planned_at TEXT NOT NULL DEFAULT ''
	);
	`

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		driver_id TEXT PRIMARY KEY,
		driver_name TEXT NOT NULL,
		license_plate TEXT NOT NULL
	);
	`

	createDwellRecordsQuery := `
	CREATE TABLE IF NOT EXISTS dwell_records (
		id TEXT PRIMARY KEY,
		driver_id TEXT NOT NULL,
		name TEXT NOT NULL,
		plate TEXT NOT NULL,
		date TEXT NOT NULL,
		entrada TIMESTAMPTZ NOT NULL,
		saida TIMESTAMPTZ,
		tempo_hub TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		CHECK (saida IS NULL OR saida >= entrada)
	);
	`

	// At most one open record per driver and day.
	createOpenIndexQuery := `
	CREATE UNIQUE INDEX IF NOT EXISTS uq_dwell_records_open
	ON dwell_records(driver_id, date)
	WHERE saida IS NULL;
	`

	createDateIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_dwell_records_date_entrada
	ON dwell_records(date, entrada DESC);
	`

	statements := []string{
		createPackagesQuery,
		createLanesQuery,
		createDriversQuery,
		createDwellRecordsQuery,
		createOpenIndexQuery,
		createDateIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
