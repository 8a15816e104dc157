package dto

import (
	"math"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/geo"
)

// Point renders missing components as null.
type Point struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type SuggestionResponse struct {
	CorridorCage  string  `json:"corridor_cage"`
	Corridor      string  `json:"corridor"`
	Location      Point   `json:"location"`
	LicensePlate  string  `json:"license_plate,omitempty"`
	PlannedAt     string  `json:"planned_at,omitempty"`
	DistanceKm    float64 `json:"distance_km"`
	DistanceKnown bool    `json:"distance_known"`
}

type AllocationResponse struct {
	Identifier       string               `json:"identifier"`
	Resolved         bool                 `json:"resolved"`
	Source           string               `json:"source"`
	Reference        Point                `json:"reference"`
	PresenceFiltered bool                 `json:"presence_filtered"`
	Suggestions      []SuggestionResponse `json:"suggestions"`
	Warning          string               `json:"warning,omitempty"`
}

func NewPoint(c domain.Coordinates) Point {
	return Point{Lat: finite(c.Lat), Lon: finite(c.Lon)}
}

// NewAllocationResponse renders unknown distances as the sentinel.
func NewAllocationResponse(a domain.Allocation) AllocationResponse {
	res := AllocationResponse{
		Identifier:       a.Identifier,
		Resolved:         a.Resolved,
		Source:           string(a.Source),
		Reference:        NewPoint(a.Reference),
		PresenceFiltered: a.PresenceFiltered,
		Suggestions:      make([]SuggestionResponse, 0, len(a.Suggestions)),
	}
	for _, s := range a.Suggestions {
		km := geo.SentinelKm
		if s.DistanceKnown {
			km = math.Round(s.DistanceKm*1000) / 1000
		}
		res.Suggestions = append(res.Suggestions, SuggestionResponse{
			CorridorCage:  s.Lane.CorridorCage,
			Corridor:      s.Lane.Corridor(),
			Location:      NewPoint(s.Lane.Location),
			LicensePlate:  s.Lane.LicensePlate,
			PlannedAt:     s.Lane.PlannedAt,
			DistanceKm:    km,
			DistanceKnown: s.DistanceKnown,
		})
	}
	return res
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
