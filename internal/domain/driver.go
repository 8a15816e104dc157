package domain

// Driver is read-only reference data describing who may check in at the hub.
type Driver struct {
	DriverID     string
	Name         string
	LicensePlate string
}
