package domain

import "time"

// Location is the last known position reported by a driver.
type Location struct {
	Coordinate
	At time.Time
}

// Driver represents a courier account.
type Driver struct {
	ID       int64
	Name     string
	Phone    string
	Vehicle  VehicleType
	Status   DriverStatus
	Active   bool
	Location *Location
}

// Assignable reports whether the driver may receive new deliveries.
func (d Driver) Assignable() bool {
	return d.Active && d.Status == DriverOnline
}

// DriverLoad is a driver together with its count of non-terminal deliveries.
type DriverLoad struct {
	Driver Driver
	Load   int
}

// PartialDriverUpdate carries optional fields to update a driver.
// A nil field means “do not change” that attribute.
type PartialDriverUpdate struct {
	ID      int64
	Name    *string
	Phone   *string
	Status  *DriverStatus
	Vehicle *VehicleType
}
