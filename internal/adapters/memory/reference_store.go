package memory

import (
	"context"
	"slices"
	"sync"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/ports"
)

// ReferenceStore keeps the reference tables in process memory. It backs
// local runs (STORE=memory) and service tests.
type ReferenceStore struct {
	mu       sync.RWMutex
	packages []domain.Package
	lanes    []domain.Lane
	drivers  []domain.Driver
}

func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{}
}

var (
	_ ports.ReferenceRepository = (*ReferenceStore)(nil)
	_ ports.ReferenceWriter     = (*ReferenceStore)(nil)
)

func (s *ReferenceStore) ListPackages(ctx context.Context) ([]domain.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.packages), nil
}

func (s *ReferenceStore) ListLanes(ctx context.Context) ([]domain.Lane, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lanes), nil
}

func (s *ReferenceStore) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.drivers), nil
}

func (s *ReferenceStore) ReplacePackages(ctx context.Context, pkgs []domain.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages = slices.Clone(pkgs)
	return nil
}

func (s *ReferenceStore) ReplaceLanes(ctx context.Context, lanes []domain.Lane) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lanes = slices.Clone(lanes)
	return nil
}

func (s *ReferenceStore) ReplaceDrivers(ctx context.Context, drivers []domain.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers = slices.Clone(drivers)
	return nil
}
