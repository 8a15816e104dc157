package ports

import (
	"context"

	"hub-ops-service/internal/domain"
)

// Port: a boundary for reading the hub's reference tables.
type ReferenceRepository interface {
	// Retrieve every package of the current load.
	ListPackages(ctx context.Context) ([]domain.Package, error)
	// Retrieve every staging lane.
	ListLanes(ctx context.Context) ([]domain.Lane, error)
	// Retrieve every registered driver.
	ListDrivers(ctx context.Context) ([]domain.Driver, error)
}

// Port: bulk replacement of reference tables, used by the import tool.
// Each call swaps the whole table atomically.
type ReferenceWriter interface {
	ReplacePackages(ctx context.Context, pkgs []domain.Package) error
	ReplaceLanes(ctx context.Context, lanes []domain.Lane) error
	ReplaceDrivers(ctx context.Context, drivers []domain.Driver) error
}
