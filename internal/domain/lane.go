package domain

import "strings"

// Lane is an outbound staging slot ("cage") identified by <corridor>-<slot>.
// LicensePlate is the vehicle currently assigned to the cage, if any, and
// PlannedAt an optional external task reference.
type Lane struct {
	CorridorCage string
	Location     Coordinates
	LicensePlate string
	PlannedAt    string
}

// Corridor returns the corridor part of the cage code ("A" for "A-12").
func (l Lane) Corridor() string {
	corridor, _, _ := strings.Cut(l.CorridorCage, "-")
	return corridor
}

// NormalizePlate folds a license plate into a comparable key: upper case,
// without spaces or dashes. "abc-1d23" and "ABC 1D23" compare equal.
func NormalizePlate(plate string) string {
	var b strings.Builder
	b.Grow(len(plate))
	for _, r := range strings.ToUpper(plate) {
		if r == ' ' || r == '-' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
