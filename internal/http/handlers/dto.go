package handlers

import "time"

type coordinateDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type deliveryDTO struct {
	ID           int64          `json:"id"`
	Reference    string         `json:"reference"`
	CustomerName string         `json:"customer_name"`
	Address      string         `json:"address"`
	Location     *coordinateDTO `json:"location,omitempty"`
	PaymentType  string         `json:"payment_type"`
	AmountDue    int64          `json:"amount_due"`
	Kind         string         `json:"kind"`
	Status       string         `json:"status"`
	StatusLabel  string         `json:"status_label"`
	DriverID     *int64         `json:"driver_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type createDeliveryRequest struct {
	Reference    string         `json:"reference"`
	CustomerName string         `json:"customer_name"`
	Address      string         `json:"address"`
	Location     *coordinateDTO `json:"location,omitempty"`
	PaymentType  string         `json:"payment_type"`
	AmountDue    int64          `json:"amount_due"`
	Kind         string         `json:"kind,omitempty"`
}

type historyEventDTO struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	Seq       int64     `json:"seq"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Reason    string    `json:"reason,omitempty"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	DriverID  *int64    `json:"driver_id,omitempty"`
	At        time.Time `json:"at"`
}

type transitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type assignRequest struct {
	DriverID int64 `json:"driver_id"`
}

type assignmentDTO struct {
	Reference string `json:"reference"`
	DriverID  int64  `json:"driver_id"`
}

type autoAssignResponse struct {
	Assigned  []assignmentDTO `json:"assigned"`
	Unmatched []string        `json:"unmatched"`
	Skipped   []string        `json:"skipped"`
}

type locationDTO struct {
	Lat float64   `json:"lat"`
	Lng float64   `json:"lng"`
	At  time.Time `json:"at"`
}

type driverDTO struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Phone    string       `json:"phone"`
	Status   string       `json:"status"`
	Vehicle  string       `json:"vehicle"`
	Active   bool         `json:"active"`
	Location *locationDTO `json:"location,omitempty"`
}

type createDriverRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Status  string `json:"status,omitempty"`
	Vehicle string `json:"vehicle,omitempty"`
}

type updateDriverRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Status  *string `json:"status,omitempty"`
	Vehicle *string `json:"vehicle,omitempty"`
}

type updateLocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}
