package domain

import "time"

type (
	// PaymentType describes how the customer pays.
	PaymentType string
	// DeliveryKind distinguishes drop-offs from return pickups.
	DeliveryKind string
)

// Payment types
const (
	PaymentCOD     PaymentType = "cod"
	PaymentPrepaid PaymentType = "prepaid"
)

// Delivery kinds
const (
	KindOutbound DeliveryKind = "outbound"
	KindReturn   DeliveryKind = "return"
)

// Valid checks if the PaymentType is valid
func (p PaymentType) Valid() bool {
	return p == PaymentCOD || p == PaymentPrepaid
}

// Valid checks if the DeliveryKind is valid
func (k DeliveryKind) Valid() bool {
	return k == KindOutbound || k == KindReturn
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Delivery is one parcel movement tracked from intake to a terminal outcome.
type Delivery struct {
	ID           int64
	Reference    string
	CustomerName string
	Address      string
	Location     *Coordinate
	PaymentType  PaymentType
	// AmountDue is in minor currency units; required for cash-on-delivery.
	AmountDue int64
	Kind      DeliveryKind
	Status    DeliveryStatus
	DriverID  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssignedTo reports whether driverID is the current assignee.
func (d Delivery) AssignedTo(driverID int64) bool {
	return d.DriverID != nil && *d.DriverID == driverID
}

// DeliveryFilter narrows delivery listings. Nil fields are ignored.
type DeliveryFilter struct {
	Status   *DeliveryStatus
	DriverID *int64
	Limit    *int
	Offset   *int
}

// Assignment pairs a delivery with the driver it was bound to.
type Assignment struct {
	Reference string
	DriverID  int64
}

// AutoAssignResult reports the outcome of one auto-assign batch.
type AutoAssignResult struct {
	Assigned  []Assignment
	Unmatched []string
	Skipped   []string
}
