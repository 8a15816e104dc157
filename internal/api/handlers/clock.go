package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"hub-ops-service/internal/api/dto"
	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/services"
)

type opsClock interface {
	Start(ctx context.Context) services.ClockStatus
	MasterStop(ctx context.Context, date string) (services.MasterStopResult, error)
	Status() services.ClockStatus
}

type ClockHandler struct {
	Clock opsClock
}

func (h *ClockHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, clockResponse(h.Clock.Status()))
}

func (h *ClockHandler) Start(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, clockResponse(h.Clock.Start(r.Context())))
}

// MasterStop accepts an optional {"date": "YYYY-MM-DD"}; today by default.
func (h *ClockHandler) MasterStop(w http.ResponseWriter, r *http.Request) {
	var req dto.MasterStopRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	date := strings.TrimSpace(req.Date)
	if date != "" {
		if _, err := time.Parse(domain.DayLayout, date); err != nil {
			writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	res, err := h.Clock.MasterStop(r.Context(), date)
	if err != nil {
		writeUnavailable(w, r, "clock.master_stop", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.MasterStopResponse{
		Date:   res.Date,
		Closed: res.Closed,
		Clock:  clockResponse(h.Clock.Status()),
	})
}

func clockResponse(s services.ClockStatus) dto.ClockResponse {
	return dto.NewClockResponse(s.Running, s.StartTime, s.Elapsed)
}

// SLA classifies a displayed duration. Unparseable input is NEUTRAL, not
// an error.
func SLA(w http.ResponseWriter, r *http.Request) {
	d := r.URL.Query().Get("duration")
	writeJSON(w, r, http.StatusOK, dto.SLAResponse{
		Duration:  d,
		SLAColors: dto.NewSLAColors(services.Classify(d)),
	})
}
