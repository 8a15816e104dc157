package geo

import (
	"math"
	"testing"

	"hub-ops-service/internal/domain"
)

func TestDistanceSymmetricAndZero(t *testing.T) {
	points := []domain.Coordinates{
		{Lat: -8.791172513071563, Lon: -63.847713631142135},
		{Lat: -8.80, Lon: -63.85},
		{Lat: -8.70, Lon: -63.70},
		{Lat: 37.7749, Lon: -122.4194},
		{Lat: 0, Lon: 0},
	}

	for _, a := range points {
		if d := Between(a, a); !d.Known() || d.OrSentinel() != 0 {
			t.Errorf("Between(%v, %v) = %v, want 0", a, a, d.OrSentinel())
		}
		for _, b := range points {
			ab, ba := Between(a, b).OrSentinel(), Between(b, a).OrSentinel()
			if math.Abs(ab-ba) > 1e-9 {
				t.Errorf("asymmetric distance %v -> %v: %f vs %f", a, b, ab, ba)
			}
		}
	}
}

func TestDistanceKnownValues(t *testing.T) {
	pkg := domain.Coordinates{Lat: -8.79, Lon: -63.84}

	near := Between(pkg, domain.Coordinates{Lat: -8.80, Lon: -63.85}).OrSentinel()
	if near < 1.4 || near > 1.7 {
		t.Errorf("near lane = %.3fkm, want ~1.5km", near)
	}

	far := Between(pkg, domain.Coordinates{Lat: -8.70, Lon: -63.70}).OrSentinel()
	if far < 17 || far > 19 {
		t.Errorf("far lane = %.3fkm, want ~18km", far)
	}
}

func TestDistanceSentinel(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"lat1 missing", nan, -63.84, -8.80, -63.85},
		{"lon1 missing", -8.79, nan, -8.80, -63.85},
		{"lat2 missing", -8.79, -63.84, nan, -63.85},
		{"lon2 missing", -8.79, -63.84, -8.80, nan},
		{"infinite", math.Inf(1), -63.84, -8.80, -63.85},
		{"all missing", nan, nan, nan, nan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2); got != SentinelKm {
				t.Errorf("DistanceKm = %f, want %f", got, SentinelKm)
			}
		})
	}
}

func TestDistanceLessPutsUnknownLast(t *testing.T) {
	if !Km(20000).Less(Invalid) {
		t.Errorf("known distance should sort before unknown")
	}
	if Invalid.Less(Km(0)) {
		t.Errorf("unknown distance should not sort before known")
	}
	if !Km(1).Less(Km(2)) || Km(2).Less(Km(1)) {
		t.Errorf("known distances should sort ascending")
	}
}

func TestScaledCoordinateSanitizer(t *testing.T) {
	s := ScaledCoordinateSanitizer{}

	tests := []struct {
		name    string
		in      domain.Coordinates
		wantLat float64
		wantLon float64
		valid   bool
	}{
		{"in range", domain.Coordinates{Lat: -8.79, Lon: -63.84}, -8.79, -63.84, true},
		{"lat scaled", domain.Coordinates{Lat: -87.9, Lon: -63.84}, -87.9, -63.84, true},
		{"lat scaled out of range", domain.Coordinates{Lat: -879.1, Lon: -63.84}, -87.91, -63.84, true},
		{"lon scaled", domain.Coordinates{Lat: -8.79, Lon: -638.4}, -8.79, -63.84, true},
		{"still invalid", domain.Coordinates{Lat: -8791, Lon: -63.84}, math.NaN(), -63.84, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.in)
			if got.Valid() != tt.valid {
				t.Fatalf("Valid() = %v, want %v (%v)", got.Valid(), tt.valid, got)
			}
			if !sameFloat(got.Lat, tt.wantLat) || !sameFloat(got.Lon, tt.wantLon) {
				t.Errorf("Sanitize(%v) = %v, want {%v %v}", tt.in, got, tt.wantLat, tt.wantLon)
			}
		})
	}
}

func TestSanitizerByName(t *testing.T) {
	if _, err := SanitizerByName("scaled"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if s, err := SanitizerByName("none"); err != nil {
		t.Errorf("unexpected error: %v", err)
	} else if got := s.Sanitize(domain.Coordinates{Lat: 500, Lon: 1}); got.Lat != 500 {
		t.Errorf("noop sanitizer changed coordinates: %v", got)
	}
	if _, err := SanitizerByName("bogus"); err == nil {
		t.Errorf("expected error for unknown sanitizer")
	}
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < 1e-9
}
