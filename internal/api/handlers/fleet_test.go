package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/services"
)

type stubTracker struct {
	scanErr error
	listErr error
}

func (s *stubTracker) Scan(ctx context.Context, channel, driverID string) (services.ScanResult, error) {
	return s.ScanDriver(ctx, driverID)
}

func (s *stubTracker) ScanDriver(ctx context.Context, driverID string) (services.ScanResult, error) {
	return services.ScanResult{Transition: domain.TransitionUnknown}, s.scanErr
}

func (s *stubTracker) ListToday(ctx context.Context) ([]domain.DwellRecord, error) {
	return nil, s.listErr
}

func (s *stubTracker) ListOpenToday(ctx context.Context) ([]domain.DwellRecord, error) {
	return nil, s.listErr
}

func (s *stubTracker) LiveGrid(ctx context.Context) ([]services.LiveEntry, error) {
	return nil, s.listErr
}

func TestFleetScanStoreFailureIs503(t *testing.T) {
	h := &FleetHandler{Tracker: &stubTracker{scanErr: errors.New("toggle: connection reset")}}

	rec := httptest.NewRecorder()
	h.Scan(rec, httptest.NewRequest(http.MethodPost, "/api/fleet/scans", strings.NewReader(`{"driver_id":"D1"}`)))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Fatalf("internal error leaked to client: %s", rec.Body.String())
	}
}

func TestFleetScanReferenceFailureIsWarning(t *testing.T) {
	err := fmt.Errorf("scan driver D1: %w", services.ErrReferenceUnavailable)
	h := &FleetHandler{Tracker: &stubTracker{scanErr: err}}

	rec := httptest.NewRecorder()
	h.Scan(rec, httptest.NewRequest(http.MethodPost, "/api/fleet/scans", strings.NewReader(`{"driver_id":"D1"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"warning"`) || !strings.Contains(rec.Body.String(), `"UNKNOWN"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestFleetListFailuresAre503(t *testing.T) {
	h := &FleetHandler{Tracker: &stubTracker{listErr: errors.New("db down")}}

	for _, tc := range []struct {
		path string
		fn   http.HandlerFunc
	}{
		{"/api/fleet/records", h.Records},
		{"/api/fleet/records?open=true", h.Records},
		{"/api/fleet/live", h.Live},
	} {
		rec := httptest.NewRecorder()
		tc.fn(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", tc.path, rec.Code)
		}
	}
}
