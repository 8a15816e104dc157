package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/geo"
	"hub-ops-service/internal/platform/obs"
	"hub-ops-service/internal/ports"
)

// DefaultReferenceTTL is how long a loaded snapshot is served before reload.
const DefaultReferenceTTL = 600 * time.Second

// ErrReferenceUnavailable marks failures to load reference data. Callers
// receive an empty snapshot alongside it and keep operating.
var ErrReferenceUnavailable = errors.New("reference data unavailable")

// ReferenceReader is what the engines need from the reference data layer.
type ReferenceReader interface {
	Snapshot(ctx context.Context) (ports.ReferenceSnapshot, error)
}

// ReferenceService serves Package, Lane and Driver tables through a TTL cache.
type ReferenceService struct {
	repo      ports.ReferenceRepository
	cache     ports.ReferenceCache
	sanitizer geo.Sanitizer
	ttl       time.Duration
	now       func() time.Time

	group singleflight.Group

	// mu orders cache writes against Invalidate; generation counts
	// invalidations so a load that started earlier does not repopulate.
	mu         sync.Mutex
	generation uint64
}

func NewReferenceService(
	repo ports.ReferenceRepository,
	cache ports.ReferenceCache,
	sanitizer geo.Sanitizer,
	ttl time.Duration,
) *ReferenceService {
	if sanitizer == nil {
		sanitizer = geo.NoopSanitizer{}
	}
	if ttl <= 0 {
		ttl = DefaultReferenceTTL
	}
	return &ReferenceService{
		repo:      repo,
		cache:     cache,
		sanitizer: sanitizer,
		ttl:       ttl,
		now:       time.Now,
	}
}

var _ ReferenceReader = (*ReferenceService)(nil)

// Snapshot returns the cached snapshot, loading it on a miss. Concurrent
// misses share a single load.
func (s *ReferenceService) Snapshot(ctx context.Context) (ports.ReferenceSnapshot, error) {
	if s.cache != nil {
		snap, ok, err := s.cache.Get(ctx)
		if err != nil {
			// A broken cache degrades to direct loads.
			log.Printf("op=reference.cache_get err=%v", err)
		} else if ok {
			return snap, nil
		}
	}

	v, err, _ := s.group.Do("reference", func() (any, error) {
		return s.load(ctx)
	})
	if err != nil {
		return ports.ReferenceSnapshot{}, err
	}
	return v.(ports.ReferenceSnapshot), nil
}

// Invalidate drops the cached snapshot so the next read reloads it.
// A load already in flight still answers its callers but is not cached.
func (s *ReferenceService) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.group.Forget("reference")
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate reference: %w", err)
	}
	return nil
}

func (s *ReferenceService) load(ctx context.Context) (snap ports.ReferenceSnapshot, err error) {
	defer obs.Time(ctx, "reference.load")(&err)

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	var (
		pkgs    []domain.Package
		lanes   []domain.Lane
		drivers []domain.Driver
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pkgs, err = s.repo.ListPackages(gctx)
		if err != nil {
			return fmt.Errorf("list packages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		lanes, err = s.repo.ListLanes(gctx)
		if err != nil {
			return fmt.Errorf("list lanes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		drivers, err = s.repo.ListDrivers(gctx)
		if err != nil {
			return fmt.Errorf("list drivers: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ports.ReferenceSnapshot{}, fmt.Errorf("load reference: %w: %w", ErrReferenceUnavailable, err)
	}

	for i := range pkgs {
		pkgs[i].Location = s.sanitizer.Sanitize(pkgs[i].Location)
	}
	for i := range lanes {
		lanes[i].Location = s.sanitizer.Sanitize(lanes[i].Location)
	}

	snap = ports.ReferenceSnapshot{
		Packages: pkgs,
		Lanes:    lanes,
		Drivers:  drivers,
		LoadedAt: s.now(),
	}

	s.cacheIfCurrent(ctx, gen, snap)

	log.Printf("op=reference.load packages=%d lanes=%d drivers=%d", len(pkgs), len(lanes), len(drivers))
	return snap, nil
}

func (s *ReferenceService) cacheIfCurrent(ctx context.Context, gen uint64, snap ports.ReferenceSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return
	}
	if s.generation != gen {
		log.Printf("op=reference.cache_set skipped=invalidated_during_load")
		return
	}
	if err := s.cache.Set(ctx, snap, s.ttl); err != nil {
		log.Printf("op=reference.cache_set err=%v", err)
	}
}
