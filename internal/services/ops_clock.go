package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/platform/obs"
	"hub-ops-service/internal/ports"
)

// ClockStatus is the read model of the ops clock.
type ClockStatus struct {
	Running   bool
	StartTime *time.Time
	Elapsed   time.Duration
}

// OpsClockService drives the hub-wide shift timer and the master stop.
type OpsClockService struct {
	session *Session
	dwell   ports.DwellLog
	events  ports.EventPublisher
	loc     *time.Location
	now     func() time.Time
}

func NewOpsClockService(session *Session, dwell ports.DwellLog, events ports.EventPublisher, loc *time.Location) *OpsClockService {
	if loc == nil {
		loc = time.UTC
	}
	return &OpsClockService{
		session: session,
		dwell:   dwell,
		events:  events,
		loc:     loc,
		now:     time.Now,
	}
}

// Start starts the clock now. Starting a running clock is a no-op.
func (c *OpsClockService) Start(ctx context.Context) ClockStatus {
	c.startAt(ctx, c.now())
	return c.Status()
}

func (c *OpsClockService) startAt(ctx context.Context, at time.Time) bool {
	if !c.session.StartClock(at) {
		return false
	}
	log.Printf("op=clock.start start_time=%s", at.Format(time.RFC3339))
	publish(ctx, c.events, domain.HubEvent{Type: domain.EventClockStart, At: at})
	return true
}

// MasterStopResult reports which day was closed and how many records.
type MasterStopResult struct {
	Date   string
	Closed int
}

// MasterStop force-closes every open dwell record of the day and stops the
// clock. An empty date means today in the hub time zone. Calling it again
// closes nothing. The clock keeps running when the close fails.
func (c *OpsClockService) MasterStop(ctx context.Context, date string) (res MasterStopResult, err error) {
	defer obs.Time(ctx, "clock.master_stop")(&err)

	now := c.now()
	if date == "" {
		date = domain.DayKey(now, c.loc)
	}

	closed, err := c.dwell.CloseAllOpen(ctx, date, now, domain.DwellStatusForceClosed)
	if err != nil {
		return MasterStopResult{Date: date}, fmt.Errorf("master stop: close open records for %s: %w", date, err)
	}
	c.session.StopClock()

	log.Printf("op=clock.master_stop date=%s closed=%d", date, closed)
	publish(ctx, c.events, domain.HubEvent{Type: domain.EventMasterStop, At: now, Closed: closed})
	return MasterStopResult{Date: date, Closed: closed}, nil
}

func (c *OpsClockService) Status() ClockStatus {
	clock := c.session.Clock()
	return ClockStatus{
		Running:   clock.Running,
		StartTime: clock.StartTime,
		Elapsed:   clock.Elapsed(c.now()),
	}
}

// publish delivers an event without letting a broken sink fail the caller.
func publish(ctx context.Context, p ports.EventPublisher, ev domain.HubEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Printf("op=events.publish type=%s err=%v", ev.Type, err)
	}
}
