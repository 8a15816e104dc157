package domain

import "time"

type EventType string

const (
	EventCheckedIn  EventType = "dwell.checked_in"
	EventCheckedOut EventType = "dwell.checked_out"
	EventClockStart EventType = "clock.started"
	EventMasterStop EventType = "clock.master_stop"
	EventSLABreach  EventType = "sla.breach"
)

// HubEvent is broadcast to operator screens and the event bus.
type HubEvent struct {
	Type     EventType
	At       time.Time
	Record   *DwellRecord
	Closed   int
	SLALevel SLALevel
}
