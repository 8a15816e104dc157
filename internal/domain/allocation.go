package domain

// ReferenceSource names the table a search identifier was resolved against.
type ReferenceSource string

const (
	ReferenceFromPackage ReferenceSource = "package"
	ReferenceFromLane    ReferenceSource = "lane"
	ReferenceFromHub     ReferenceSource = "hub"
)

// Suggestion is one ranked candidate lane.
// DistanceKm is meaningful only when DistanceKnown is true.
type Suggestion struct {
	Lane          Lane
	DistanceKm    float64
	DistanceKnown bool
}

// Allocation is the output of a resolve-and-suggest request.
// Resolved is false when the identifier matched neither a package nor a lane
// and the hub coordinates were used as the reference point.
type Allocation struct {
	Identifier       string
	Resolved         bool
	Source           ReferenceSource
	Reference        Coordinates
	Suggestions      []Suggestion
	PresenceFiltered bool
}
