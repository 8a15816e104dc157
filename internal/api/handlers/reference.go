package handlers

import (
	"context"
	"log"
	"net/http"

	"hub-ops-service/internal/platform/obs"
)

type referenceInvalidator interface {
	Invalidate(ctx context.Context) error
}

type ReferenceHandler struct {
	Reference referenceInvalidator
}

// Invalidate drops the cached reference snapshot.
func (h *ReferenceHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.Reference.Invalidate(r.Context()); err != nil {
		log.Printf("req_id=%s op=reference.invalidate err=%v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusServiceUnavailable, "reference cache unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "invalidated"})
}
