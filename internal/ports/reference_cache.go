package ports

import (
	"context"
	"time"

	"hub-ops-service/internal/domain"
)

// ReferenceSnapshot is one consistent read of the reference tables.
type ReferenceSnapshot struct {
	Packages []domain.Package
	Lanes    []domain.Lane
	Drivers  []domain.Driver
	LoadedAt time.Time
}

// Port: TTL storage for reference snapshots.
// Get returns ok=false on a miss or an expired entry.
type ReferenceCache interface {
	Get(ctx context.Context) (ReferenceSnapshot, bool, error)
	Set(ctx context.Context, snap ReferenceSnapshot, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
