package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/platform/obs"
	"hub-ops-service/internal/ports"
)

// ScanResult is the outcome of a driver scan.
// Duplicate is set when the Session suppressed a repeated scan; Record is
// only meaningful for IN and OUT.
type ScanResult struct {
	Transition domain.Transition
	Record     domain.DwellRecord
	Duplicate  bool
}

// LiveEntry is one row of the live-status grid.
type LiveEntry struct {
	Record  domain.DwellRecord
	Elapsed time.Duration
	Level   domain.SLALevel
}

// DwellTracker toggles drivers in and out of the hub.
type DwellTracker struct {
	reference ReferenceReader
	dwell     ports.DwellLog
	session   *Session
	clock     *OpsClockService
	events    ports.EventPublisher
	loc       *time.Location
	now       func() time.Time
	newID     func() string

	mu       sync.Mutex
	breached map[string]struct{}
}

func NewDwellTracker(
	reference ReferenceReader,
	dwell ports.DwellLog,
	session *Session,
	clock *OpsClockService,
	events ports.EventPublisher,
	loc *time.Location,
) *DwellTracker {
	if loc == nil {
		loc = time.UTC
	}
	return &DwellTracker{
		reference: reference,
		dwell:     dwell,
		session:   session,
		clock:     clock,
		events:    events,
		loc:       loc,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		breached:  make(map[string]struct{}),
	}
}

// Scan applies the anti-duplicate guard for the channel before ScanDriver.
// A scan that fails does not count, so repeating it is not suppressed.
func (t *DwellTracker) Scan(ctx context.Context, channel, driverID string) (ScanResult, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return t.ScanDriver(ctx, driverID)
	}
	if !t.session.ShouldProcess(channel, driverID) {
		return ScanResult{Transition: domain.TransitionUnknown, Duplicate: true}, nil
	}

	res, err := t.ScanDriver(ctx, driverID)
	if err != nil {
		t.session.Forget(channel, driverID)
	}
	return res, err
}

// ScanDriver toggles the driver's state for today. Unknown or blank ids
// change nothing and yield UNKNOWN.
func (t *DwellTracker) ScanDriver(ctx context.Context, driverID string) (res ScanResult, err error) {
	defer obs.Time(ctx, "dwell.scan")(&err)

	res = ScanResult{Transition: domain.TransitionUnknown}

	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return res, nil
	}

	snap, refErr := t.reference.Snapshot(ctx)
	driver, ok := findDriver(snap.Drivers, driverID)
	if !ok {
		if refErr != nil {
			return res, fmt.Errorf("scan driver %s: %w", driverID, refErr)
		}
		return res, nil
	}

	now := t.now()
	open := domain.NewDwellRecord(t.newID(), driver, now, t.loc)

	toggled, err := t.dwell.Toggle(ctx, open, now)
	if err != nil {
		return res, fmt.Errorf("scan driver %s: toggle: %w", driverID, err)
	}

	res.Transition = toggled.Transition
	res.Record = toggled.Record

	switch toggled.Transition {
	case domain.TransitionIn:
		t.clock.startAt(ctx, now)
		publish(ctx, t.events, domain.HubEvent{Type: domain.EventCheckedIn, At: now, Record: &res.Record})
	case domain.TransitionOut:
		publish(ctx, t.events, domain.HubEvent{Type: domain.EventCheckedOut, At: now, Record: &res.Record})
	}

	return res, nil
}

// ListToday returns today's records, newest entrada first.
func (t *DwellTracker) ListToday(ctx context.Context) ([]domain.DwellRecord, error) {
	recs, err := t.dwell.ListByDate(ctx, t.today())
	if err != nil {
		return nil, fmt.Errorf("list today: %w", err)
	}
	return recs, nil
}

// ListOpenToday returns today's open records, newest entrada first.
func (t *DwellTracker) ListOpenToday(ctx context.Context) ([]domain.DwellRecord, error) {
	recs, err := t.dwell.ListOpenByDate(ctx, t.today())
	if err != nil {
		return nil, fmt.Errorf("list open today: %w", err)
	}
	return recs, nil
}

// LiveGrid returns the open records with their running dwell and SLA level.
// A record seen in BREACH for the first time emits an sla.breach event.
func (t *DwellTracker) LiveGrid(ctx context.Context) ([]LiveEntry, error) {
	recs, err := t.ListOpenToday(ctx)
	if err != nil {
		return nil, fmt.Errorf("live grid: %w", err)
	}

	now := t.now()
	out := make([]LiveEntry, 0, len(recs))
	for i := range recs {
		elapsed := recs[i].Elapsed(now)
		level := ClassifyDuration(elapsed)
		out = append(out, LiveEntry{Record: recs[i], Elapsed: elapsed, Level: level})

		if level == domain.SLABreach && t.markBreached(recs[i].ID) {
			rec := recs[i]
			publish(ctx, t.events, domain.HubEvent{Type: domain.EventSLABreach, At: now, Record: &rec, SLALevel: level})
		}
	}
	return out, nil
}

func (t *DwellTracker) markBreached(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, seen := t.breached[id]; seen {
		return false
	}
	t.breached[id] = struct{}{}
	return true
}

func (t *DwellTracker) today() string {
	return domain.DayKey(t.now(), t.loc)
}

func findDriver(drivers []domain.Driver, id string) (domain.Driver, bool) {
	for _, d := range drivers {
		if strings.TrimSpace(d.DriverID) == id {
			return d, true
		}
	}
	return domain.Driver{}, false
}
