package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"hub-ops-service/internal/api/handlers"
)

// Deps are the handler dependencies wired by the composition root.
// Live is optional; without it /ws is not mounted.
type Deps struct {
	Allocation *handlers.AllocationHandler
	Fleet      *handlers.FleetHandler
	Clock      *handlers.ClockHandler
	Reference  *handlers.ReferenceHandler
	Live       http.Handler
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", handlers.Health)
	if d.Live != nil {
		r.Handle("/ws", d.Live)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/allocations/{identifier}", d.Allocation.Suggest)

		r.Post("/fleet/scans", d.Fleet.Scan)
		r.Get("/fleet/records", d.Fleet.Records)
		r.Get("/fleet/live", d.Fleet.Live)

		r.Get("/sla", handlers.SLA)

		r.Get("/clock", d.Clock.Status)
		r.Post("/clock/start", d.Clock.Start)
		r.Post("/clock/master-stop", d.Clock.MasterStop)

		r.Post("/admin/reference/invalidate", d.Reference.Invalidate)
	})

	return r
}
