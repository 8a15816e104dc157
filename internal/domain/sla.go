package domain

// SLALevel buckets elapsed dwell time for display.
type SLALevel string

const (
	SLANeutral SLALevel = "NEUTRAL"
	SLAOK      SLALevel = "OK"
	SLAWarn    SLALevel = "WARN"
	SLABreach  SLALevel = "BREACH"
)

// Colors returns the background and text colours used on operator screens.
func (l SLALevel) Colors() (background, text string) {
	switch l {
	case SLAOK:
		return "#28a745", "white"
	case SLAWarn:
		return "#f9d71c", "black"
	case SLABreach:
		return "#ff4b4b", "white"
	}
	return "white", "black"
}
