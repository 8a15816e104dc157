package domain

import "math"

// Geographic coordinates in decimal degrees.
// Missing values are carried as NaN so that reference rows with blank
// latitude/longitude can flow through the engine without special casing.
type Coordinates struct {
	Lat float64
	Lon float64
}

// MissingCoordinates returns a point with both components unset.
func MissingCoordinates() Coordinates {
	return Coordinates{Lat: math.NaN(), Lon: math.NaN()}
}

// Valid reports whether both components are finite and inside the WGS-84 range.
func (c Coordinates) Valid() bool {
	if !finite(c.Lat) || !finite(c.Lon) {
		return false
	}
	return math.Abs(c.Lat) <= 90 && math.Abs(c.Lon) <= 180
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
