package domain

import (
	"fmt"
	"time"
)

// DayLayout is the calendar-day key stored on every dwell record.
const DayLayout = "2006-01-02"

type DwellStatus string

const (
	DwellStatusInHub       DwellStatus = "in hub"
	DwellStatusClosed      DwellStatus = "closed"
	DwellStatusForceClosed DwellStatus = "force-closed"
)

// Transition is the outcome of a driver scan.
type Transition string

const (
	TransitionIn      Transition = "IN"
	TransitionOut     Transition = "OUT"
	TransitionUnknown Transition = "UNKNOWN"
)

// DwellRecord tracks one visit of a driver's vehicle to the hub.
// A nil Saida means the vehicle is still inside. At most one record per
// (DriverID, Date) may be open at any time.
type DwellRecord struct {
	ID       string
	DriverID string
	Name     string
	Plate    string
	Date     string
	Entrada  time.Time
	Saida    *time.Time
	TempoHub string
	Status   DwellStatus
}

// NewDwellRecord opens a record for the driver at the given instant.
func NewDwellRecord(id string, d Driver, at time.Time, loc *time.Location) DwellRecord {
	return DwellRecord{
		ID:       id,
		DriverID: d.DriverID,
		Name:     d.Name,
		Plate:    d.LicensePlate,
		Date:     DayKey(at, loc),
		Entrada:  at,
		Status:   DwellStatusInHub,
	}
}

func (r *DwellRecord) Open() bool { return r.Saida == nil }

// Close sets the exit time, elapsed dwell and final status.
// An exit earlier than the entry is clamped so that Saida >= Entrada holds.
func (r *DwellRecord) Close(at time.Time, status DwellStatus) error {
	if r.Saida != nil {
		return fmt.Errorf("close dwell record %s: already closed at %s", r.ID, r.Saida.Format(time.RFC3339))
	}
	if at.Before(r.Entrada) {
		at = r.Entrada
	}

	r.Saida = &at
	r.TempoHub = FormatDwell(at.Sub(r.Entrada))
	r.Status = status
	return nil
}

// Elapsed returns the dwell so far: Saida-Entrada for closed records,
// now-Entrada for open ones.
func (r *DwellRecord) Elapsed(now time.Time) time.Duration {
	end := now
	if r.Saida != nil {
		end = *r.Saida
	}
	if end.Before(r.Entrada) {
		return 0
	}
	return end.Sub(r.Entrada)
}

// DayKey returns the hub-local calendar day of t.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

// FormatDwell renders a duration as H:MM:SS without sub-second precision.
// Durations of a day or more get a "N day(s), " prefix.
func FormatDwell(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)

	days := total / 86400
	rest := total % 86400
	h, m, s := rest/3600, (rest%3600)/60, rest%60

	clock := fmt.Sprintf("%d:%02d:%02d", h, m, s)
	switch {
	case days == 1:
		return "1 day, " + clock
	case days > 1:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
	return clock
}
