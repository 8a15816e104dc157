package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"hub-ops-service/internal/api/dto"
	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/platform/obs"
	"hub-ops-service/internal/services"
)

type fleetTracker interface {
	Scan(ctx context.Context, channel, driverID string) (services.ScanResult, error)
	ScanDriver(ctx context.Context, driverID string) (services.ScanResult, error)
	ListToday(ctx context.Context) ([]domain.DwellRecord, error)
	ListOpenToday(ctx context.Context) ([]domain.DwellRecord, error)
	LiveGrid(ctx context.Context) ([]services.LiveEntry, error)
}

type FleetHandler struct {
	Tracker fleetTracker
}

func (h *FleetHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req dto.ScanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.DriverID = strings.TrimSpace(req.DriverID)
	if req.DriverID == "" {
		writeError(w, r, http.StatusBadRequest, "driver_id is required")
		return
	}

	var (
		res services.ScanResult
		err error
	)
	if channel := strings.TrimSpace(req.Channel); channel != "" {
		res, err = h.Tracker.Scan(r.Context(), "http:"+channel, req.DriverID)
	} else {
		res, err = h.Tracker.ScanDriver(r.Context(), req.DriverID)
	}

	out := dto.ScanResponse{Transition: res.Transition, Duplicate: res.Duplicate}
	if err != nil {
		if !errors.Is(err, services.ErrReferenceUnavailable) {
			writeUnavailable(w, r, "fleet.scan", err)
			return
		}
		log.Printf("req_id=%s op=fleet.scan degraded err=%v", obs.RequestID(r.Context()), err)
		out.Warning = "driver reference data unavailable"
	}

	if res.Transition == domain.TransitionIn || res.Transition == domain.TransitionOut {
		rec := dto.NewDwellRecordResponse(res.Record, services.Classify(res.Record.TempoHub))
		out.Record = &rec
	}
	writeJSON(w, r, http.StatusOK, out)
}

// Records lists today's records; ?open=true keeps only vehicles still inside.
func (h *FleetHandler) Records(w http.ResponseWriter, r *http.Request) {
	openOnly := false
	if v := r.URL.Query().Get("open"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "open must be true or false")
			return
		}
		openOnly = b
	}

	var (
		recs []domain.DwellRecord
		err  error
	)
	if openOnly {
		recs, err = h.Tracker.ListOpenToday(r.Context())
	} else {
		recs, err = h.Tracker.ListToday(r.Context())
	}
	if err != nil {
		writeUnavailable(w, r, "fleet.records", err)
		return
	}

	res := dto.ListRecordsResponse{Records: make([]dto.DwellRecordResponse, 0, len(recs))}
	for _, rec := range recs {
		if res.Date == "" {
			res.Date = rec.Date
		}
		res.Records = append(res.Records, dto.NewDwellRecordResponse(rec, services.Classify(rec.TempoHub)))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *FleetHandler) Live(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Tracker.LiveGrid(r.Context())
	if err != nil {
		writeUnavailable(w, r, "fleet.live", err)
		return
	}

	res := dto.LiveGridResponse{Entries: make([]dto.LiveEntryResponse, 0, len(entries))}
	for _, e := range entries {
		res.Entries = append(res.Entries, dto.LiveEntryResponse{
			DwellRecordResponse: dto.NewDwellRecordResponse(e.Record, e.Level),
			ElapsedSeconds:      int64(e.Elapsed.Seconds()),
			Elapsed:             domain.FormatDwell(e.Elapsed),
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}
