package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/platform/obs"
	"hub-ops-service/internal/ports"
)

// PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// PostgreSQL-backed implementation of the DwellLog port.
type PostgresDwellLog struct{ DB *sqlx.DB }

func NewPostgresDwellLog(db *sqlx.DB) *PostgresDwellLog {
	return &PostgresDwellLog{DB: db}
}

var _ ports.DwellLog = (*PostgresDwellLog)(nil)

type dwellRow struct {
	ID       string       `db:"id"`
	DriverID string       `db:"driver_id"`
	Name     string       `db:"name"`
	Plate    string       `db:"plate"`
	Date     string       `db:"date"`
	Entrada  time.Time    `db:"entrada"`
	Saida    sql.NullTime `db:"saida"`
	TempoHub string       `db:"tempo_hub"`
	Status   string       `db:"status"`
}

func (r dwellRow) toDomain() domain.DwellRecord {
	rec := domain.DwellRecord{
		ID:       r.ID,
		DriverID: r.DriverID,
		Name:     r.Name,
		Plate:    r.Plate,
		Date:     r.Date,
		Entrada:  r.Entrada,
		TempoHub: r.TempoHub,
		Status:   domain.DwellStatus(r.Status),
	}
	if r.Saida.Valid {
		s := r.Saida.Time
		rec.Saida = &s
	}
	return rec
}

const dwellColumns = `id, driver_id, name, plate, date, entrada, saida, tempo_hub, status`

func (l *PostgresDwellLog) Insert(ctx context.Context, rec domain.DwellRecord) (err error) {
	defer obs.Time(ctx, "dwell.Insert")(&err)

	if l.DB == nil {
		return errors.New("postgres dwell log: DB is nil")
	}
	return insertDwell(ctx, l.DB, rec)
}

func (l *PostgresDwellLog) Update(ctx context.Context, rec domain.DwellRecord) (err error) {
	defer obs.Time(ctx, "dwell.Update")(&err)

	if l.DB == nil {
		return errors.New("postgres dwell log: DB is nil")
	}

	n, err := updateDwell(ctx, l.DB, rec)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update dwell record id=%s: %w", rec.ID, ports.ErrNotFound)
	}
	return nil
}

func (l *PostgresDwellLog) ListByDate(ctx context.Context, date string) (_ []domain.DwellRecord, err error) {
	defer obs.Time(ctx, "dwell.ListByDate")(&err)

	query := `SELECT ` + dwellColumns + ` FROM dwell_records WHERE date = $1 ORDER BY entrada DESC;`
	return l.list(ctx, "list dwell records", query, date)
}

func (l *PostgresDwellLog) ListOpenByDate(ctx context.Context, date string) (_ []domain.DwellRecord, err error) {
	defer obs.Time(ctx, "dwell.ListOpenByDate")(&err)

	query := `SELECT ` + dwellColumns + ` FROM dwell_records WHERE date = $1 AND saida IS NULL ORDER BY entrada DESC;`
	return l.list(ctx, "list open dwell records", query, date)
}

func (l *PostgresDwellLog) FindOpen(ctx context.Context, driverID, date string) (_ domain.DwellRecord, err error) {
	defer obs.Time(ctx, "dwell.FindOpen")(&err)

	if l.DB == nil {
		return domain.DwellRecord{}, errors.New("postgres dwell log: DB is nil")
	}

	query := `SELECT ` + dwellColumns + ` FROM dwell_records WHERE driver_id = $1 AND date = $2 AND saida IS NULL;`
	var row dwellRow
	if err := l.DB.GetContext(ctx, &row, query, driverID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DwellRecord{}, ports.ErrNotFound
		}
		return domain.DwellRecord{}, fmt.Errorf("find open dwell record driver_id=%s: %w", driverID, err)
	}
	return row.toDomain(), nil
}

// Toggle serializes on a transaction-scoped advisory lock keyed by driver
// and day, then closes the open row (locked FOR UPDATE) or inserts a new one.
func (l *PostgresDwellLog) Toggle(ctx context.Context, open domain.DwellRecord, at time.Time) (_ ports.ToggleResult, err error) {
	defer obs.Time(ctx, "dwell.Toggle")(&err)

	if l.DB == nil {
		return ports.ToggleResult{}, errors.New("postgres dwell log: DB is nil")
	}

	tx, err := l.DB.BeginTxx(ctx, nil)
	if err != nil {
		return ports.ToggleResult{}, fmt.Errorf("toggle dwell record: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	lockKey := open.DriverID + "|" + open.Date
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, lockKey); err != nil {
		return ports.ToggleResult{}, fmt.Errorf("toggle dwell record: advisory lock: %w", err)
	}

	query := `SELECT ` + dwellColumns + ` FROM dwell_records WHERE driver_id = $1 AND date = $2 AND saida IS NULL FOR UPDATE;`
	var row dwellRow
	err = tx.GetContext(ctx, &row, query, open.DriverID, open.Date)

	var res ports.ToggleResult
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := insertDwell(ctx, tx, open); err != nil {
			return ports.ToggleResult{}, fmt.Errorf("toggle dwell record: %w", err)
		}
		res = ports.ToggleResult{Transition: domain.TransitionIn, Record: open}
	case err != nil:
		return ports.ToggleResult{}, fmt.Errorf("toggle dwell record: select open row: %w", err)
	default:
		rec := row.toDomain()
		if err := rec.Close(at, domain.DwellStatusClosed); err != nil {
			return ports.ToggleResult{}, fmt.Errorf("toggle dwell record: %w", err)
		}
		if _, err := updateDwell(ctx, tx, rec); err != nil {
			return ports.ToggleResult{}, fmt.Errorf("toggle dwell record: %w", err)
		}
		res = ports.ToggleResult{Transition: domain.TransitionOut, Record: rec}
	}

	if err := tx.Commit(); err != nil {
		return ports.ToggleResult{}, fmt.Errorf("toggle dwell record: commit tx: %w", err)
	}
	return res, nil
}

// CloseAllOpen locks the day's open rows and closes each with its own
// tempo_hub.
func (l *PostgresDwellLog) CloseAllOpen(ctx context.Context, date string, at time.Time, status domain.DwellStatus) (_ int, err error) {
	defer obs.Time(ctx, "dwell.CloseAllOpen")(&err)

	if l.DB == nil {
		return 0, errors.New("postgres dwell log: DB is nil")
	}

	tx, err := l.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("close all open: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + dwellColumns + ` FROM dwell_records WHERE date = $1 AND saida IS NULL FOR UPDATE;`
	var rows []dwellRow
	if err := tx.SelectContext(ctx, &rows, query, date); err != nil {
		return 0, fmt.Errorf("close all open: select open rows: %w", err)
	}

	for _, row := range rows {
		rec := row.toDomain()
		if err := rec.Close(at, status); err != nil {
			return 0, fmt.Errorf("close all open: %w", err)
		}
		if _, err := updateDwell(ctx, tx, rec); err != nil {
			return 0, fmt.Errorf("close all open: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("close all open: commit tx: %w", err)
	}
	return len(rows), nil
}

func (l *PostgresDwellLog) list(ctx context.Context, op, query string, args ...any) ([]domain.DwellRecord, error) {
	if l.DB == nil {
		return nil, errors.New("postgres dwell log: DB is nil")
	}

	var rows []dwellRow
	if err := l.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: query dwell_records table: %w", op, err)
	}

	out := make([]domain.DwellRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func insertDwell(ctx context.Context, ex sqlx.ExecerContext, rec domain.DwellRecord) error {
	query := `
	INSERT INTO dwell_records (` + dwellColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := ex.ExecContext(ctx, query,
		rec.ID, rec.DriverID, rec.Name, rec.Plate, rec.Date,
		rec.Entrada, nullTime(rec.Saida), rec.TempoHub, string(rec.Status),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("insert dwell record driver_id=%s date=%s: %w", rec.DriverID, rec.Date, ports.ErrOpenRecordExists)
		}
		return fmt.Errorf("insert dwell record driver_id=%s: %w", rec.DriverID, err)
	}
	return nil
}

func updateDwell(ctx context.Context, ex sqlx.ExecerContext, rec domain.DwellRecord) (int64, error) {
	query := `
	UPDATE dwell_records
	SET saida = $2, tempo_hub = $3, status = $4
	WHERE id = $1;
	`
	res, err := ex.ExecContext(ctx, query, rec.ID, nullTime(rec.Saida), rec.TempoHub, string(rec.Status))
	if err != nil {
		return 0, fmt.Errorf("update dwell record id=%s: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update dwell record id=%s: rows affected: %w", rec.ID, err)
	}
	return n, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
