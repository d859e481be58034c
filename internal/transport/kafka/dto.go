package kafka

import (
	"strings"
	"time"

	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/service/intake"
)

// IntakeDTO is the wire form of an upstream order event.
type IntakeDTO struct {
	Type         string    `json:"type"`
	Reference    string    `json:"reference"`
	CustomerName string    `json:"customer_name"`
	Address      string    `json:"address"`
	Lat          *float64  `json:"lat,omitempty"`
	Lng          *float64  `json:"lng,omitempty"`
	PaymentType  string    `json:"payment_type"`
	AmountDue    int64     `json:"amount_due"`
	Kind         string    `json:"kind"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToDomain converts IntakeDTO to intake.Event
func ToDomain(dto IntakeDTO) intake.Event {
	d := domain.Delivery{
		Reference:    strings.TrimSpace(dto.Reference),
		CustomerName: strings.TrimSpace(dto.CustomerName),
		Address:      strings.TrimSpace(dto.Address),
		PaymentType:  domain.PaymentType(strings.ToLower(strings.TrimSpace(dto.PaymentType))),
		AmountDue:    dto.AmountDue,
		Kind:         domain.DeliveryKind(strings.ToLower(strings.TrimSpace(dto.Kind))),
	}
	if dto.Lat != nil && dto.Lng != nil {
		d.Location = &domain.Coordinate{Lat: *dto.Lat, Lng: *dto.Lng}
	}
	return intake.Event{
		Type:      strings.TrimSpace(dto.Type),
		Delivery:  d,
		Reason:    strings.TrimSpace(dto.Reason),
		CreatedAt: dto.CreatedAt,
	}
}

// EventDTO is the wire form of a published history event.
type EventDTO struct {
	ID         string    `json:"id"`
	DeliveryID int64     `json:"delivery_id"`
	Reference  string    `json:"reference"`
	Seq        int64     `json:"seq"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Reason     string    `json:"reason,omitempty"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	DriverID   *int64    `json:"driver_id,omitempty"`
	At         time.Time `json:"at"`
}

// FromEvent converts a history event to its wire form.
func FromEvent(e domain.HistoryEvent) EventDTO {
	return EventDTO{
		ID:         e.ID,
		DeliveryID: e.DeliveryID,
		Reference:  e.Reference,
		Seq:        e.Seq,
		From:       string(e.FromStatus),
		To:         string(e.ToStatus),
		Reason:     e.Reason,
		ActorID:    e.ActorID,
		ActorRole:  string(e.ActorRole),
		DriverID:   e.DriverID,
		At:         e.At.UTC(),
	}
}
