package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/ports"
)

var dwellCols = []string{"id", "driver_id", "name", "plate", "date", "entrada", "saida", "tempo_hub", "status"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func TestToggle_InsertsWhenNoOpenRecord(t *testing.T) {
	db, mock := newMockDB(t)
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	open := domain.NewDwellRecord("r1", domain.Driver{DriverID: "D1", Name: "Ana", LicensePlate: "ABC1D23"}, at, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs("D1|2026-01-01").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM dwell_records WHERE driver_id = (.+) AND date = (.+) AND saida IS NULL FOR UPDATE`).
		WithArgs("D1", "2026-01-01").
		WillReturnRows(sqlmock.NewRows(dwellCols))
	mock.ExpectExec(`INSERT INTO dwell_records`).
		WithArgs("r1", "D1", "Ana", "ABC1D23", "2026-01-01", at, nil, "", "in hub").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := NewPostgresDwellLog(db).Toggle(context.Background(), open, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transition != domain.TransitionIn || res.Record.ID != "r1" {
		t.Errorf("result = %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestToggle_ClosesOpenRecord(t *testing.T) {
	db, mock := newMockDB(t)
	entrada := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	at := entrada.Add(16 * time.Minute)
	next := domain.NewDwellRecord("r2", domain.Driver{DriverID: "D1"}, at, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs("D1|2026-01-01").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM dwell_records WHERE driver_id = (.+) FOR UPDATE`).
		WithArgs("D1", "2026-01-01").
		WillReturnRows(sqlmock.NewRows(dwellCols).
			AddRow("r1", "D1", "Ana", "ABC1D23", "2026-01-01", entrada, nil, "", "in hub"))
	mock.ExpectExec(`UPDATE dwell_records`).
		WithArgs("r1", at, "0:16:00", "closed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := NewPostgresDwellLog(db).Toggle(context.Background(), next, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transition != domain.TransitionOut {
		t.Fatalf("transition = %s, want OUT", res.Transition)
	}
	if res.Record.ID != "r1" || res.Record.TempoHub != "0:16:00" || res.Record.Saida == nil {
		t.Errorf("record = %+v", res.Record)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestToggle_RollsBackOnInsertError(t *testing.T) {
	db, mock := newMockDB(t)
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	open := domain.NewDwellRecord("r1", domain.Driver{DriverID: "D1"}, at, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM dwell_records`).WillReturnRows(sqlmock.NewRows(dwellCols))
	mock.ExpectExec(`INSERT INTO dwell_records`).WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
	mock.ExpectRollback()

	_, err := NewPostgresDwellLog(db).Toggle(context.Background(), open, at)
	if !errors.Is(err, ports.ErrOpenRecordExists) {
		t.Fatalf("err = %v, want ErrOpenRecordExists", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCloseAllOpen_ForceClosesEachRow(t *testing.T) {
	db, mock := newMockDB(t)
	t0 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	at := t0.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM dwell_records WHERE date = (.+) AND saida IS NULL FOR UPDATE`).
		WithArgs("2026-01-01").
		WillReturnRows(sqlmock.NewRows(dwellCols).
			AddRow("r1", "D1", "Ana", "A", "2026-01-01", t0, nil, "", "in hub").
			AddRow("r2", "D2", "Bia", "B", "2026-01-01", t0.Add(30*time.Minute), nil, "", "in hub"))
	mock.ExpectExec(`UPDATE dwell_records`).
		WithArgs("r1", at, "1:00:00", "force-closed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE dwell_records`).
		WithArgs("r2", at, "0:30:00", "force-closed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := NewPostgresDwellLog(db).CloseAllOpen(context.Background(), "2026-01-01", at, domain.DwellStatusForceClosed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("closed = %d, want 2", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListByDate_MapsRows(t *testing.T) {
	db, mock := newMockDB(t)
	t0 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	saida := t0.Add(5 * time.Minute)

	mock.ExpectQuery(`SELECT (.+) FROM dwell_records WHERE date = (.+) ORDER BY entrada DESC`).
		WithArgs("2026-01-01").
		WillReturnRows(sqlmock.NewRows(dwellCols).
			AddRow("r2", "D2", "Bia", "B", "2026-01-01", t0.Add(time.Minute), saida, "0:04:00", "closed").
			AddRow("r1", "D1", "Ana", "A", "2026-01-01", t0, nil, "", "in hub"))

	recs, err := NewPostgresDwellLog(db).ListByDate(context.Background(), "2026-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if recs[0].Saida == nil || !recs[0].Saida.Equal(saida) || recs[0].Status != domain.DwellStatusClosed {
		t.Errorf("closed row = %+v", recs[0])
	}
	if !recs[1].Open() {
		t.Errorf("row r1 should be open")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFindOpen_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM dwell_records WHERE driver_id = (.+) AND date = (.+) AND saida IS NULL`).
		WithArgs("D9", "2026-01-01").
		WillReturnRows(sqlmock.NewRows(dwellCols))

	_, err := NewPostgresDwellLog(db).FindOpen(context.Background(), "D9", "2026-01-01")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdate_MissingRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE dwell_records`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPostgresDwellLog(db).Update(context.Background(), domain.DwellRecord{ID: "nope"})
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
