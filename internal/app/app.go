// Package app assembles adapters and services for the executables.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"

	"hub-ops-service/internal/adapters/cache"
	"hub-ops-service/internal/adapters/memory"
	"hub-ops-service/internal/adapters/repositories"
	"hub-ops-service/internal/api"
	"hub-ops-service/internal/api/handlers"
	"hub-ops-service/internal/config"
	"hub-ops-service/internal/geo"
	"hub-ops-service/internal/platform/db"
	"hub-ops-service/internal/ports"
	"hub-ops-service/internal/services"
)

// Stores groups the persistence adapters selected by STORE.
type Stores struct {
	Reference ports.ReferenceRepository
	Writer    ports.ReferenceWriter
	Dwell     ports.DwellLog

	// DB is nil for the memory store.
	DB *sqlx.DB
}

func OpenStores(cfg *config.Config) (*Stores, error) {
	if cfg.Store == config.StoreMemory {
		ref := memory.NewReferenceStore()
		return &Stores{Reference: ref, Writer: ref, Dwell: memory.NewDwellLog()}, nil
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open stores: %w", err)
	}
	repo := repositories.NewPostgresReferenceRepository(conn)
	return &Stores{
		Reference: repo,
		Writer:    repo,
		Dwell:     repositories.NewPostgresDwellLog(conn),
		DB:        conn,
	}, nil
}

// Migrate creates the schema. It is a no-op for the memory store.
func (s *Stores) Migrate(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	return repositories.InitSchema(ctx, s.DB)
}

func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// NewReferenceCache uses Redis when REDIS_URL is set so that every process
// shares one snapshot; otherwise the cache lives in process memory.
// The returned close func is never nil.
func NewReferenceCache(ctx context.Context, cfg *config.Config) (ports.ReferenceCache, func() error, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemoryReferenceCache(), func() error { return nil }, nil
	}
	client, err := config.NewRedis(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("reference cache: %w", err)
	}
	log.Printf("Reference cache backend=redis addr=%s", client.Options().Addr)
	return cache.NewRedisReferenceCache(client), client.Close, nil
}

// Module holds the wired hub services.
type Module struct {
	Session   *services.Session
	Reference *services.ReferenceService
	Clock     *services.OpsClockService
	Tracker   *services.DwellTracker
	Allocator *services.Allocator
}

// Build wires the services on top of the given adapters. events may be nil.
func Build(cfg *config.Config, stores *Stores, refCache ports.ReferenceCache, events ports.EventPublisher) (*Module, error) {
	sanitizer, err := geo.SanitizerByName(cfg.CoordinateSanitizer)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	session := services.NewSession()
	reference := services.NewReferenceService(stores.Reference, refCache, sanitizer, cfg.ReferenceTTL)
	clock := services.NewOpsClockService(session, stores.Dwell, events, cfg.Location)

	return &Module{
		Session:   session,
		Reference: reference,
		Clock:     clock,
		Tracker:   services.NewDwellTracker(reference, stores.Dwell, session, clock, events, cfg.Location),
		Allocator: services.NewAllocator(reference, stores.Dwell, cfg.Hub, cfg.SuggestionLimit, cfg.Location),
	}, nil
}

// Router exposes the module over HTTP. live may be nil.
func (m *Module) Router(live http.Handler) http.Handler {
	return api.NewRouter(api.Deps{
		Allocation: &handlers.AllocationHandler{Allocator: m.Allocator},
		Fleet:      &handlers.FleetHandler{Tracker: m.Tracker},
		Clock:      &handlers.ClockHandler{Clock: m.Clock},
		Reference:  &handlers.ReferenceHandler{Reference: m.Reference},
		Live:       live,
	})
}
