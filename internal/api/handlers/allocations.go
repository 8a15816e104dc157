package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hub-ops-service/internal/api/dto"
	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/platform/obs"
)

type allocator interface {
	ResolveAndSuggest(ctx context.Context, identifier string, presentOnly bool) (domain.Allocation, error)
}

type AllocationHandler struct {
	Allocator allocator
}

// Suggest resolves the path identifier and returns the nearest lanes.
// Degraded reference data still yields 200 with a warning.
func (h *AllocationHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimSpace(chi.URLParam(r, "identifier"))

	presentOnly := false
	if v := r.URL.Query().Get("present_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "present_only must be true or false")
			return
		}
		presentOnly = b
	}

	alloc, err := h.Allocator.ResolveAndSuggest(r.Context(), identifier, presentOnly)

	res := dto.NewAllocationResponse(alloc)
	if err != nil {
		log.Printf("req_id=%s op=allocation.suggest degraded err=%v", obs.RequestID(r.Context()), err)
		res.Warning = "reference data unavailable; results may be incomplete"
	}
	writeJSON(w, r, http.StatusOK, res)
}
