package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"hub-ops-service/internal/domain"
)

func TestListPackages_NullCoordinatesBecomeMissing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM packages ORDER BY order_id`).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "latitude", "longitude"}).
			AddRow("BR123", -8.79, -63.84).
			AddRow("BR999", nil, nil))

	pkgs, err := NewPostgresReferenceRepository(db).ListPackages(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pkgs) != 2 {
		t.Fatalf("packages = %d, want 2", len(pkgs))
	}
	if !pkgs[0].Location.Valid() || pkgs[0].Location.Lat != -8.79 {
		t.Errorf("BR123 location = %+v", pkgs[0].Location)
	}
	if pkgs[1].Location.Valid() {
		t.Errorf("BR999 location should be missing, got %+v", pkgs[1].Location)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListLanesAndDrivers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresReferenceRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM lanes ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"corridor_cage", "latitude", "longitude", "license_plate", "planned_at"}).
			AddRow("A-1", -8.80, -63.85, "ABC1D23", "T-42"))
	mock.ExpectQuery(`SELECT (.+) FROM drivers ORDER BY driver_id`).
		WillReturnRows(sqlmock.NewRows([]string{"driver_id", "driver_name", "license_plate"}).
			AddRow("D1", "Ana", "ABC1D23"))

	lanes, err := repo.ListLanes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lanes) != 1 || lanes[0].CorridorCage != "A-1" || lanes[0].PlannedAt != "T-42" {
		t.Errorf("lanes = %+v", lanes)
	}

	drivers, err := repo.ListDrivers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drivers) != 1 || drivers[0].Name != "Ana" {
		t.Errorf("drivers = %+v", drivers)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReplaceLanes_SwapsTableInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM lanes`).WillReturnResult(sqlmock.NewResult(0, 5))
	prep := mock.ExpectPrepare(`INSERT INTO lanes`)
	prep.ExpectExec().
		WithArgs("A-1", -8.80, -63.85, "ABC1D23", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs("A-2", nil, nil, "", "").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := NewPostgresReferenceRepository(db).ReplaceLanes(context.Background(), []domain.Lane{
		{CorridorCage: "A-1", Location: domain.Coordinates{Lat: -8.80, Lon: -63.85}, LicensePlate: "ABC1D23"},
		{CorridorCage: "A-2", Location: domain.MissingCoordinates()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReplaceDrivers_RollsBackOnInsertError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM drivers`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(`INSERT INTO drivers`).
		ExpectExec().
		WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectRollback()

	err := NewPostgresReferenceRepository(db).ReplaceDrivers(context.Background(), []domain.Driver{{DriverID: "D1"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
