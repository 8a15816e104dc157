package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/platform/obs"
	"hub-ops-service/internal/ports"
)

// PostgreSQL-backed implementation of the ReferenceRepository and
// ReferenceWriter ports.
type PostgresReferenceRepository struct{ DB *sqlx.DB }

func NewPostgresReferenceRepository(db *sqlx.DB) *PostgresReferenceRepository {
	return &PostgresReferenceRepository{DB: db}
}

var (
	_ ports.ReferenceRepository = (*PostgresReferenceRepository)(nil)
	_ ports.ReferenceWriter     = (*PostgresReferenceRepository)(nil)
)

type packageRow struct {
	OrderID   string          `db:"order_id"`
	Latitude  sql.NullFloat64 `db:"latitude"`
	Longitude sql.NullFloat64 `db:"longitude"`
}

type laneRow struct {
	CorridorCage string          `db:"corridor_cage"`
	Latitude     sql.NullFloat64 `db:"latitude"`
	Longitude    sql.NullFloat64 `db:"longitude"`
	LicensePlate string          `db:"license_plate"`
	PlannedAt    string          `db:"planned_at"`
}

type driverRow struct {
	DriverID     string `db:"driver_id"`
	DriverName   string `db:"driver_name"`
	LicensePlate string `db:"license_plate"`
}

// Return all packages of the current load.
func (r *PostgresReferenceRepository) ListPackages(ctx context.Context) (_ []domain.Package, err error) {
	defer obs.Time(ctx, "reference.ListPackages")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres reference repository: DB is nil")
	}

	query := `
	SELECT
		order_id,
		latitude,
		longitude
	FROM packages
	ORDER BY order_id;
	`
	var rows []packageRow
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list packages: query packages table: %w", err)
	}

	pkgs := make([]domain.Package, 0, len(rows))
	for _, row := range rows {
		pkgs = append(pkgs, domain.Package{
			OrderID:  row.OrderID,
			Location: coordinatesFromNull(row.Latitude, row.Longitude),
		})
	}
	return pkgs, nil
}

// Return lanes in insertion order so equal distances rank stably.
func (r *PostgresReferenceRepository) ListLanes(ctx context.Context) (_ []domain.Lane, err error) {
	defer obs.Time(ctx, "reference.ListLanes")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres reference repository: DB is nil")
	}

	query := `
	SELECT
		corridor_cage,
		latitude,
		longitude,
		license_plate,
		planned_at
	FROM lanes
	ORDER BY id;
	`
	var rows []laneRow
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list lanes: query lanes table: %w", err)
	}

	lanes := make([]domain.Lane, 0, len(rows))
	for _, row := range rows {
		lanes = append(lanes, domain.Lane{
			CorridorCage: row.CorridorCage,
			Location:     coordinatesFromNull(row.Latitude, row.Longitude),
			LicensePlate: row.LicensePlate,
			PlannedAt:    row.PlannedAt,
		})
	}
	return lanes, nil
}

func (r *PostgresReferenceRepository) ListDrivers(ctx context.Context) (_ []domain.Driver, err error) {
	defer obs.Time(ctx, "reference.ListDrivers")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres reference repository: DB is nil")
	}

	query := `
	SELECT
		driver_id,
		driver_name,
		license_plate
	FROM drivers
	ORDER BY driver_id;
	`
	var rows []driverRow
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list drivers: query drivers table: %w", err)
	}

	drivers := make([]domain.Driver, 0, len(rows))
	for _, row := range rows {
		drivers = append(drivers, domain.Driver{
			DriverID:     row.DriverID,
			Name:         row.DriverName,
			LicensePlate: row.LicensePlate,
		})
	}
	return drivers, nil
}

func (r *PostgresReferenceRepository) ReplacePackages(ctx context.Context, pkgs []domain.Package) (err error) {
	defer obs.Time(ctx, "reference.ReplacePackages")(&err)

	return r.replace(ctx, "packages",
		`INSERT INTO packages (order_id, latitude, longitude) VALUES ($1, $2, $3);`,
		len(pkgs),
		func(i int) []any {
			p := pkgs[i]
			return []any{p.OrderID, nullFloat(p.Location.Lat), nullFloat(p.Location.Lon)}
		},
	)
}

func (r *PostgresReferenceRepository) ReplaceLanes(ctx context.Context, lanes []domain.Lane) (err error) {
	defer obs.Time(ctx, "reference.ReplaceLanes")(&err)

	return r.replace(ctx, "lanes",
		`INSERT INTO lanes (corridor_cage, latitude, longitude, license_plate, planned_at) VALUES ($1, $2, $3, $4, $5);`,
		len(lanes),
		func(i int) []any {
			l := lanes[i]
			return []any{l.CorridorCage, nullFloat(l.Location.Lat), nullFloat(l.Location.Lon), l.LicensePlate, l.PlannedAt}
		},
	)
}

func (r *PostgresReferenceRepository) ReplaceDrivers(ctx context.Context, drivers []domain.Driver) (err error) {
	defer obs.Time(ctx, "reference.ReplaceDrivers")(&err)

	return r.replace(ctx, "drivers",
		`INSERT INTO drivers (driver_id, driver_name, license_plate) VALUES ($1, $2, $3);`,
		len(drivers),
		func(i int) []any {
			d := drivers[i]
			return []any{d.DriverID, d.Name, d.LicensePlate}
		},
	)
}

// replace swaps the contents of table in one transaction.
func (r *PostgresReferenceRepository) replace(ctx context.Context, table, insert string, n int, args func(i int) []any) error {
	if r.DB == nil {
		return errors.New("postgres reference repository: DB is nil")
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace %s: begin tx: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+";"); err != nil {
		return fmt.Errorf("replace %s: clear table: %w", table, err)
	}

	stmt, err := tx.PreparexContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("replace %s: prepare insert: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("replace %s: insert row #%d: %w", table, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace %s: commit tx: %w", table, err)
	}
	return nil
}

func coordinatesFromNull(lat, lon sql.NullFloat64) domain.Coordinates {
	c := domain.MissingCoordinates()
	if lat.Valid {
		c.Lat = lat.Float64
	}
	if lon.Valid {
		c.Lon = lon.Float64
	}
	return c
}

func nullFloat(f float64) sql.NullFloat64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
