package domain

import "time"

// OpsClock is the hub-wide shift timer. StartTime is nil while stopped.
type OpsClock struct {
	Running   bool
	StartTime *time.Time
}

// Elapsed returns the running time of the shift, or zero when stopped.
func (c OpsClock) Elapsed(now time.Time) time.Duration {
	if !c.Running || c.StartTime == nil || now.Before(*c.StartTime) {
		return 0
	}
	return now.Sub(*c.StartTime)
}
