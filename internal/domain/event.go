package domain

import "time"

// HistoryEvent is the immutable record of one accepted transition.
type HistoryEvent struct {
	ID         string
	DeliveryID int64
	Reference  string
	// Seq is 1-based and strictly increasing per delivery.
	Seq        int64
	FromStatus DeliveryStatus
	ToStatus   DeliveryStatus
	Reason     string
	ActorID    string
	ActorRole  Role
	DriverID   *int64
	At         time.Time
}
