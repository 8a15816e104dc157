// Package geo computes great-circle distances between hub reference points.
//
// Distances are returned as a Distance value that separates "known" from
// "undeterminable" (missing or non-numeric coordinates). Callers that need
// the legacy numeric contract use Km, which renders undeterminable as
// SentinelKm.
package geo

import (
	"math"

	"hub-ops-service/internal/domain"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// SentinelKm stands for "distance could not be computed".
	SentinelKm = 9999.0
)

// Distance is either a finite kilometre figure or Invalid.
type Distance struct {
	km    float64
	valid bool
}

// Invalid is the distance between points with missing coordinates.
var Invalid = Distance{}

// Km wraps a computed kilometre figure as a known distance.
func Km(v float64) Distance { return Distance{km: v, valid: true} }

// Value returns the distance in kilometres and whether it is known.
func (d Distance) Value() (float64, bool) { return d.km, d.valid }

// Known reports whether the distance could be computed.
func (d Distance) Known() bool { return d.valid }

// OrSentinel returns the distance in kilometres, or SentinelKm if unknown.
func (d Distance) OrSentinel() float64 {
	if !d.valid {
		return SentinelKm
	}
	return d.km
}

// Less orders known distances ascending, with unknown distances last.
func (d Distance) Less(o Distance) bool {
	if d.valid != o.valid {
		return d.valid
	}
	return d.km < o.km
}

// Between returns the haversine distance between two points.
func Between(a, b domain.Coordinates) Distance {
	if !numeric(a.Lat) || !numeric(a.Lon) || !numeric(b.Lat) || !numeric(b.Lon) {
		return Invalid
	}

	p1 := degToRad(a.Lat)
	p2 := degToRad(b.Lat)
	dp := degToRad(b.Lat - a.Lat)
	dl := degToRad(b.Lon - a.Lon)

	sinLat := math.Sin(dp / 2)
	sinLon := math.Sin(dl / 2)
	h := sinLat*sinLat + math.Cos(p1)*math.Cos(p2)*sinLon*sinLon

	// Rounding can push h marginally above 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return Km(2 * EarthRadiusKm * math.Asin(math.Sqrt(h)))
}

// DistanceKm is the scalar form: kilometres, or SentinelKm when any
// coordinate is missing. It never panics.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return Between(
		domain.Coordinates{Lat: lat1, Lon: lon1},
		domain.Coordinates{Lat: lat2, Lon: lon2},
	).OrSentinel()
}

func numeric(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
