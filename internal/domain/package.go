package domain

// Represents a single inbound parcel known to the hub for the current load.
// OrderID is unique per load; coordinates point at the delivery address and
// may be missing when the source spreadsheet had blank or broken cells.
type Package struct {
	OrderID  string
	Location Coordinates
}
