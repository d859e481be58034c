package domain

import "regexp"

// DeliveryStatus is the lifecycle state of a delivery.
type DeliveryStatus string

// List of delivery statuses
const (
	StatusPending     DeliveryStatus = "pending"
	StatusAssigned    DeliveryStatus = "assigned"
	StatusPickedUp    DeliveryStatus = "picked_up"
	StatusInTransit   DeliveryStatus = "in_transit"
	StatusDelivered   DeliveryStatus = "delivered"
	StatusReturned    DeliveryStatus = "returned"
	StatusRescheduled DeliveryStatus = "rescheduled"
	StatusCancelled   DeliveryStatus = "cancelled"
)

var allowedDeliveryStatuses = [...]DeliveryStatus{
	StatusPending, StatusAssigned, StatusPickedUp, StatusInTransit,
	StatusDelivered, StatusReturned, StatusRescheduled, StatusCancelled,
}

// DeliveryStatuses returns every known delivery status in lifecycle order.
func DeliveryStatuses() []DeliveryStatus {
	out := make([]DeliveryStatus, len(allowedDeliveryStatuses))
	copy(out, allowedDeliveryStatuses[:])
	return out
}

// Valid checks if the DeliveryStatus is known
func (s DeliveryStatus) Valid() bool {
	for _, v := range allowedDeliveryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s DeliveryStatus) Terminal() bool {
	switch s {
	case StatusDelivered, StatusReturned, StatusCancelled:
		return true
	default:
		return false
	}
}

// CountsTowardLoad reports whether a delivery in status s occupies its driver.
func (s DeliveryStatus) CountsTowardLoad() bool {
	switch s {
	case StatusAssigned, StatusPickedUp, StatusInTransit, StatusRescheduled:
		return true
	default:
		return false
	}
}

var statusLabels = map[DeliveryStatus]string{
	StatusPending:     "Pending",
	StatusAssigned:    "Assigned",
	StatusPickedUp:    "Picked up",
	StatusInTransit:   "In transit",
	StatusDelivered:   "Delivered",
	StatusReturned:    "Returned",
	StatusRescheduled: "Rescheduled",
	StatusCancelled:   "Cancelled",
}

// Label returns the human readable name shown by dashboards and the driver app.
func (s DeliveryStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return "Unknown"
}

type (
	// DriverStatus represents driver availability.
	DriverStatus string
	// VehicleType represents the vehicle a driver uses.
	VehicleType string
)

// List of possible driver statuses
const (
	DriverOnline     DriverStatus = "online"
	DriverOffline    DriverStatus = "offline"
	DriverOnDelivery DriverStatus = "on_delivery"
)

// List of possible vehicle types
const (
	VehicleFoot    VehicleType = "on_foot"
	VehicleScooter VehicleType = "scooter"
	VehicleCar     VehicleType = "car"
	VehicleVan     VehicleType = "van"
)

var allowedDriverStatuses = [...]DriverStatus{
	DriverOnline, DriverOffline, DriverOnDelivery,
}

var allowedVehicleTypes = [...]VehicleType{
	VehicleFoot, VehicleScooter, VehicleCar, VehicleVan,
}

// Valid checks if the DriverStatus is valid
func (s DriverStatus) Valid() bool {
	for _, v := range allowedDriverStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid checks if the VehicleType is valid
func (t VehicleType) Valid() bool {
	for _, v := range allowedVehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

var rePhone = regexp.MustCompile(`^\+[0-9]{11}$`)

// ValidatePhone validates the phone number format
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
