package ports

import (
	"context"
	"errors"
	"time"

	"hub-ops-service/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrOpenRecordExists is returned by Insert when the driver already has
	// an open record for the day.
	ErrOpenRecordExists = errors.New("open dwell record already exists")
)

// ToggleResult reports what an atomic toggle did.
type ToggleResult struct {
	Transition domain.Transition
	Record     domain.DwellRecord
}

// Port: the live dwell log. Implementations must never cache reads.
type DwellLog interface {
	Insert(ctx context.Context, rec domain.DwellRecord) error
	Update(ctx context.Context, rec domain.DwellRecord) error

	// Records of the given day, newest entrada first.
	ListByDate(ctx context.Context, date string) ([]domain.DwellRecord, error)
	// Open records of the given day, newest entrada first.
	ListOpenByDate(ctx context.Context, date string) ([]domain.DwellRecord, error)
	// The open record of a driver for the day, or ErrNotFound.
	FindOpen(ctx context.Context, driverID, date string) (domain.DwellRecord, error)

	// Toggle closes the driver's open record for open.Date at `at` if one
	// exists, otherwise inserts open. The decision and the write are atomic.
	Toggle(ctx context.Context, open domain.DwellRecord, at time.Time) (ToggleResult, error)

	// CloseAllOpen closes every open record of the day and returns how many
	// were closed.
	CloseAllOpen(ctx context.Context, date string, at time.Time, status domain.DwellStatus) (int, error)
}
