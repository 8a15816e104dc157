package geo

import (
	"fmt"
	"math"

	"hub-ops-service/internal/domain"
)

// Sanitizer cleans reference-data coordinates before they reach the engine.
type Sanitizer interface {
	Sanitize(c domain.Coordinates) domain.Coordinates
}

// NoopSanitizer returns coordinates unchanged.
type NoopSanitizer struct{}

func (NoopSanitizer) Sanitize(c domain.Coordinates) domain.Coordinates { return c }

// ScaledCoordinateSanitizer repairs a spreadsheet export artifact where a
// decimal point was lost one place to the right (-87.9 instead of -8.79).
// Out-of-range components are divided by 10 once; anything still out of
// range, or non-numeric, becomes missing.
type ScaledCoordinateSanitizer struct{}

func (ScaledCoordinateSanitizer) Sanitize(c domain.Coordinates) domain.Coordinates {
	return domain.Coordinates{
		Lat: rescale(c.Lat, 90),
		Lon: rescale(c.Lon, 180),
	}
}

func rescale(v, limit float64) float64 {
	if !numeric(v) {
		return math.NaN()
	}
	if math.Abs(v) > limit {
		v /= 10
	}
	if math.Abs(v) > limit {
		return math.NaN()
	}
	return v
}

// SanitizerByName maps a configuration value to a Sanitizer.
func SanitizerByName(name string) (Sanitizer, error) {
	switch name {
	case "", "scaled":
		return ScaledCoordinateSanitizer{}, nil
	case "none":
		return NoopSanitizer{}, nil
	}
	return nil, fmt.Errorf("unknown coordinate sanitizer %q", name)
}
